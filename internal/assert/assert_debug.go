//go:build debug

// Package assert holds internal consistency checks that are compiled in only
// with the "debug" build tag.
package assert

import "fmt"

// Invariant panics when ok is false. It guards internal bookkeeping such as
// byte counters in the wire decoders, never external input: a malformed
// response is an error, not an invariant violation.
//
//	assert.Invariant(remaining >= 0, "chunk byte count must not go negative")
func Invariant(ok bool, msg string) {
	if !ok {
		panic(fmt.Sprintf("INVARIANT VIOLATION: %s", msg))
	}
}
