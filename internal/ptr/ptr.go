// Package ptr has helpers for optional fields modelled as pointers.
package ptr

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// Deref returns *p, or def when p is nil.
func Deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// String renders a pointer to a string-like type, "" for nil.
func String[T ~string](p *T) string {
	if p == nil {
		return ""
	}
	return string(*p)
}
