//go:build !debug

// Package assert holds internal consistency checks that are compiled in only
// with the "debug" build tag.
package assert

// Invariant does nothing without the "debug" build tag.
func Invariant(bool, string) {}
