package dialect

import (
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/doeshing/aiterm/internal/domain"
)

// TargetClass is a named set of glob patterns over normalized paths.
type TargetClass struct {
	Name     string
	Patterns []string
}

// homeSpellings are rewritten to "~" before matching.
var homeSpellings = []string{
	"${home}", "$home", "%userprofile%", "$env:userprofile", "$env:home", "%homepath%", "~",
}

// NormalizePath folds the spellings of one location into a single
// lower-cased, slash-separated form used for class matching.
func NormalizePath(raw string) string {
	p := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"'`))
	if p == "" {
		return ""
	}
	lower := strings.ToLower(strings.ReplaceAll(p, `\`, "/"))

	for _, home := range homeSpellings {
		if lower == home || strings.HasPrefix(lower, home+"/") {
			lower = "~" + lower[len(home):]
			break
		}
	}

	switch {
	case len(lower) > 2 && strings.HasPrefix(lower, "//") && lower[2] != '/':
		// UNC (//host/share) and device namespace (//./, //?/) paths keep their prefix
		return lower
	case isDrivePath(lower):
		rest := lower[2:]
		if rest == "" || rest == "/" {
			return lower[:2] + "/"
		}
		if !strings.HasPrefix(rest, "/") {
			return lower
		}
		return lower[:2] + path.Clean(rest)
	default:
		return path.Clean(lower)
	}
}

func isDrivePath(p string) bool {
	return len(p) >= 2 && p[1] == ':' && p[0] >= 'a' && p[0] <= 'z'
}

func hasWildcard(raw string) bool {
	return strings.ContainsAny(raw, "*?[")
}

// classifier assigns target classes to normalized paths.
type classifier struct {
	classes []TargetClass
}

func newClassifier(classes map[string][]string) classifier {
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)

	out := classifier{classes: make([]TargetClass, 0, len(names))}
	for _, name := range names {
		patterns := make([]string, 0, len(classes[name]))
		for _, pattern := range classes[name] {
			patterns = append(patterns, strings.ToLower(pattern))
		}
		out.classes = append(out.classes, TargetClass{Name: name, Patterns: patterns})
	}
	return out
}

// classify returns every class the raw target belongs to, or "other".
func (c classifier) classify(raw string) []string {
	normalized := NormalizePath(raw)
	var matched []string
	for _, class := range c.classes {
		for _, pattern := range class.Patterns {
			if ok, err := doublestar.Match(pattern, normalized); err == nil && ok {
				matched = append(matched, class.Name)
				break
			}
		}
	}
	if hasWildcard(raw) {
		matched = append(matched, domain.TargetWildcard)
	}
	if len(matched) == 0 {
		matched = append(matched, domain.TargetOther)
	}
	return matched
}

func (c classifier) classifyAll(targets []string) map[string]bool {
	out := make(map[string]bool)
	for _, target := range targets {
		for _, class := range c.classify(target) {
			out[class] = true
		}
	}
	return out
}

// ValidatePatterns reports the first pattern that is not a valid glob.
func ValidatePatterns(patterns []string) (string, bool) {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(strings.ToLower(pattern)) {
			return pattern, false
		}
	}
	return "", true
}
