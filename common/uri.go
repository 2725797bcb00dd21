package common

import "strings"

// NormalizeURI lower-cases the URI scheme and flattens path separators so
// that every store in the worker can key its maps on one canonical form, per
// spec.md §3 ("File identity ... a normalized URI. All maps are keyed on
// this normalized form (lower-cased scheme, resolved path separators).").
func NormalizeURI(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return strings.ReplaceAll(uri, "\\", "/")
	}

	return strings.ToLower(scheme) + "://" + strings.ReplaceAll(rest, "\\", "/")
}
