package main

import "strings"

// legacyFlags maps the single-dash flags of the original sorer tool to
// their long forms, with the number of values each one takes
var legacyFlags = map[string]struct {
	name   string
	values int
}{
	"-from":           {"--from", 1},
	"-len":            {"--len", 1},
	"-print_col_type": {"--print-col-type", 1},
	"-print_col_idx":  {"--print-col-idx", 2},
	"-is_missing_idx": {"--is-missing-idx", 2},
}

// normalizeLegacyArgs rewrites "-print_col_idx 2 10" style arguments into
// "--print-col-idx 2,10" so pflag can parse them. Other arguments pass
// through unchanged.
func normalizeLegacyArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		flag, ok := legacyFlags[args[i]]
		if !ok {
			out = append(out, args[i])
			continue
		}
		out = append(out, flag.name)
		n := flag.values
		if rest := len(args) - i - 1; rest < n {
			n = rest
		}
		if n > 0 {
			out = append(out, strings.Join(args[i+1:i+1+n], ","))
			i += n
		}
	}
	return out
}
