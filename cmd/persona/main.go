package main

import (
	"os"
	"strings"

	"persona-board/internal/cli"
	"persona-board/internal/model"
)

func isProfileID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, model.ProfileIDPrefix) && len(s) > len(model.ProfileIDPrefix)
}

// rewriteProfileLookupArgs turns `persona <profile-id>` into
// `persona profiles show <profile-id>`. Cobra would read the id as a
// subcommand, so argv is rewritten before parsing. Persistent flags may come
// first, so the first positional token is located rather than argv[1].
func rewriteProfileLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":      true,
		"--widget":   true,
		"--backend":  true,
		"--language": true,
		"--format":   true,
	}

	insert := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "profiles", "show")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isProfileID(argv[i+1]) {
				return insert(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			// Unknown flags are skipped without consuming a value so the id
			// is never swallowed.
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isProfileID(a) {
			return insert(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteProfileLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
