package commands

import "strings"

// Interactive reports whether args open a full-screen view. Logs written
// while a view owns the terminal are held back and flushed on exit.
func Interactive(args []string) bool {
	if len(args) == 0 {
		return false
	}

	rest := args[1:]
	if hasFlag(rest, "help", "h") {
		return false
	}

	switch args[0] {
	case "review":
		return true
	case "words":
		return len(positional(rest)) == 0
	case "chat":
		pos := positional(rest)
		if len(pos) > 0 && pos[0] == "log" {
			return false
		}
		return !hasFlag(rest, "plain")
	default:
		return false
	}
}

func positional(args []string) []string {
	var out []string
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			out = append(out, a)
		}
	}
	return out
}

func hasFlag(args []string, names ...string) bool {
	for _, a := range args {
		name, value, _ := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") {
			continue
		}
		for _, n := range names {
			if name == n && value != "false" {
				return true
			}
		}
	}
	return false
}
