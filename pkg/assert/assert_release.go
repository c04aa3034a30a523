//go:build release

package assert

// Enabled reports whether assertions are compiled in.
const Enabled = false

// Assert panics if cond is false and will
// print the formatted message to the console.
//
// Assert is a no-op when compiled with the
// release build tag.
func Assert(cond bool, format string, args ...any) {
	// no-op
}
