package errors

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

type stackTracer interface {
	error
	StackTrace() errors.StackTrace
}

// stackTrace returns the first found stack trace frame carried by given
// error or any wrapped error. It returns nil if no stack trace is found.
func stackTrace(err error) errors.StackTrace {
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}

// Format works like pkg/errors, with additional trimming of the frames that
// belong to this package.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	// Normal output, no stack trace
	if verb != 'v' {
		fmt.Fprint(s, e.Error())
		return
	}

	stack := trimInternal(stackTrace(e))
	if s.Flag('+') {
		fmt.Fprintf(s, "%+v\n", stack)
		fmt.Fprint(s, e.Error())
	} else {
		fmt.Fprint(s, e.Error())
		if len(stack) > 0 {
			writeSimpleFrame(s, stack[0])
		}
	}
}

// trimInternal removes all frames that belong to the error creation
// functions.
func trimInternal(st errors.StackTrace) errors.StackTrace {
	for len(st) > 0 && isInternalFrame(st[0]) {
		st = st[1:]
	}
	for len(st) > 0 && isRuntimeFrame(st[len(st)-1]) {
		st = st[:len(st)-1]
	}
	return st
}

const pkgPrefix = "github.com/iov-one/splitter/errors."

// isInternalFrame returns true if given frame belongs to the non test code
// of this package or to the runtime.
func isInternalFrame(f errors.Frame) bool {
	if isRuntimeFrame(f) {
		return true
	}
	file, _ := fileLine(f)
	if strings.HasSuffix(file, "_test.go") {
		return false
	}
	return strings.HasPrefix(funcName(f), pkgPrefix)
}

func isRuntimeFrame(f errors.Frame) bool {
	return strings.HasPrefix(funcName(f), "runtime.")
}

func funcName(f errors.Frame) string {
	fn := runtime.FuncForPC(uintptr(f) - 1)
	if fn == nil {
		return ""
	}
	return fn.Name()
}

func fileLine(f errors.Frame) (string, int) {
	pc := uintptr(f) - 1
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown", 0
	}
	return fn.FileLine(pc)
}

func writeSimpleFrame(s io.Writer, f errors.Frame) {
	file, line := fileLine(f)
	// cut file at "github.com/"
	chunks := strings.SplitN(file, "github.com/", 2)
	if len(chunks) == 2 {
		file = chunks[1]
	}
	fmt.Fprintf(s, " [%s:%d]", file, line)
}
