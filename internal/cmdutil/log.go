// internal/cmdutil/log.go
package cmdutil

import (
	"fmt"
	"io"
)

// Errorf prints a "predsim: " prefixed message to dst.
func Errorf(dst io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(dst, "predsim: "+format+"\n", a...)
}
