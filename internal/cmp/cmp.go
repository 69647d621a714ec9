// Package cmp provides the Or helper from the Go 1.22+ standard library
// cmp package so the module can build with a Go 1.21 toolchain. The
// implementation matches the standard library exactly.
package cmp

// Or returns the first of its arguments that is not equal to the zero value.
// If no argument is non-zero, it returns the zero value.
func Or[T comparable](vals ...T) T {
	var zero T
	for _, val := range vals {
		if val != zero {
			return val
		}
	}
	return zero
}
