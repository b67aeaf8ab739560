package browzer

import "strings"

// FormatPath normalizes a route or request path:
//
//   - an empty or all-whitespace path becomes "/"
//   - one trailing "/" is removed, unless the path is exactly "/"
//   - every "/?" is collapsed to "?"
//
// The rules are re-applied until the path stops changing, so inputs such as
// "/a//" or "/x//?q" still end up at a fixed point and
// FormatPath(FormatPath(p)) == FormatPath(p) holds for every p.
func FormatPath(path string) (string, error) {
	for {
		next := formatOnce(path)
		if next == path {
			break
		}
		path = next
	}
	if path == "" {
		return "", ErrPathFormat
	}
	return path, nil
}

func formatOnce(path string) string {
	if strings.TrimSpace(path) == "" {
		return "/"
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return strings.ReplaceAll(path, "/?", "?")
}
