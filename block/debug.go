package block

import "fmt"

// debugChecks gates contract assertions on the unsafe paths.
// Compile-time toggle; release builds carry no checks.
const debugChecks = false

func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
