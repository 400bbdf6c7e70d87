// Package ptr creates pointers to values, mostly for optional JSON
// fields like citation counts where nil means "absent".
package ptr

// To creates a pointer to the given value.
func To[T any](v T) *T {
	return &v
}
