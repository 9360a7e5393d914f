// Package flagx helps several independent components parse their own flags
// out of a shared command line without tripping over each other's options.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// normalize maps "--name" to "-name" so both spellings match the same
// allowed entry; the stdlib flag package accepts either form.
func normalize(name string) string {
	if strings.HasPrefix(name, "--") {
		return name[1:]
	}
	return name
}

// FilterArgs returns a slice of command-line arguments that only contains
// the allowed flags (and their values) specified in allowedFlags.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
//
// Allowed names are compared after folding a leading "--" into "-".
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[normalize(f)] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[normalize(name)]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[normalize(arg)]; ok {
			filtered = append(filtered, arg)
			// a following non-flag token is this flag's value
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigPath extracts the JSON config file path passed via -c or -config.
// Returns "" if neither is present.
func ConfigPath(args []string) string {
	var config string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return config
}

// JsonConfigFlags is ConfigPath applied to the process arguments.
func JsonConfigFlags() string {
	return ConfigPath(os.Args[1:])
}
