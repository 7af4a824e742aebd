package vm

import (
	"fmt"
	"strings"
)

// RuntimeError is a runtime fault plus the call-stack backtrace captured at
// the moment it was raised (spec.md §5, §7: "uncaught runtime errors print a
// message and a frame-by-frame backtrace, then exit 70").
type RuntimeError struct {
	Message   string
	Backtrace []string
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, line := range e.Backtrace {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

// runtimeErrorf builds a RuntimeError, capturing a backtrace of every active
// frame from innermost to outermost while the frame stack is still intact.
func (vm *VM) runtimeErrorf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)

	backtrace := make([]string, 0, vm.frameCount)
	for i := vm.frameCount - 1; i >= 0; i-- {
		f := &vm.frames[i]
		backtrace = append(backtrace, fmt.Sprintf("[line %d] in %s", f.line(), f.funcName()))
	}
	return &RuntimeError{Message: msg, Backtrace: backtrace}
}

// reportRuntimeError writes err to vm.Stderr: the message, then one
// "[line N] in name" line per frame, innermost first (spec.md §7).
func (vm *VM) reportRuntimeError(err error) {
	fmt.Fprintln(vm.Stderr, err.Error())
}
