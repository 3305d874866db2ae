//go:build !debug
// +build !debug

package debug

import "io"

// Assert is compiled out unless built with -tags debug.
func Assert(cond bool, msg interface{}) {
}

func Fprintf(w io.Writer, format string, a ...interface{}) {
}
