package vm

import (
	"os/exec"
	"syscall"
	"time"

	"github.com/marrow-lang/marrow/lang/value"
)

// registerNatives installs the builtin native functions of spec.md §6 as
// globals. All but clock and time are closures bound to vm, so they can
// intern their failure messages and report them through the same error
// convention.
func registerNatives(vm *VM) {
	define := func(name string, fn value.NativeFn) {
		vm.DefineGlobal(name, &value.Native{Name: name, Fn: fn})
	}

	define("clock", nativeClock)
	define("time", nativeTime)
	define("term", nativeTerm(vm))
	define("length", nativeLength(vm))
	define("prepend", nativePrepend(vm))
	define("append", nativeAppend(vm))
	define("head", nativeHead(vm))
	define("tail", nativeTail(vm))
	define("rest", nativeRest(vm))
	define("remove", nativeRemove(vm))
}

func nativeFail(vm *VM, msg string) (value.Value, bool) {
	return vm.strings.Intern(msg), false
}

// clock() returns process CPU time in seconds, mirroring the original
// interpreter's clock()/CLOCKS_PER_SEC (spec.md §6).
func nativeClock(argc int, args []value.Value) (value.Value, bool) {
	var ru syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &ru); err != nil {
		return value.Number(0), true
	}
	user := float64(ru.Utime.Sec) + float64(ru.Utime.Usec)/1e6
	sys := float64(ru.Stime.Sec) + float64(ru.Stime.Usec)/1e6
	return value.Number(user + sys), true
}

// time() returns wall-clock seconds since the Unix epoch, mirroring the
// original interpreter's (double)time(NULL) (spec.md §6).
func nativeTime(argc int, args []value.Value) (value.Value, bool) {
	return value.Number(float64(time.Now().Unix())), true
}

// term(cmd) spawns cmd in a subshell and returns its exit status, mirroring
// the original interpreter's system(command->chars) (spec.md §6).
func nativeTerm(vm *VM) value.NativeFn {
	return func(argc int, args []value.Value) (value.Value, bool) {
		if argc != 1 {
			return nativeFail(vm, "term() takes exactly 1 argument.")
		}
		s, ok := args[0].(*value.String)
		if !ok {
			return nativeFail(vm, "term() expects a string.")
		}
		cmd := exec.Command("sh", "-c", s.Go())
		cmd.Stdout = vm.Stdout
		cmd.Stderr = vm.Stderr
		err := cmd.Run()
		if err == nil {
			return value.Number(0), true
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return value.Number(float64(exitErr.ExitCode())), true
		}
		return nativeFail(vm, "term() failed to run command: "+err.Error())
	}
}

// length(v) reports the element count of an array or dict, or the byte
// length of a string (spec.md §6).
func nativeLength(vm *VM) value.NativeFn {
	return func(argc int, args []value.Value) (value.Value, bool) {
		if argc != 1 {
			return nativeFail(vm, "length() takes exactly 1 argument.")
		}
		switch v := args[0].(type) {
		case *value.Array:
			return value.Number(v.Len()), true
		case *value.Dict:
			return value.Number(v.Len()), true
		case *value.String:
			return value.Number(v.Len()), true
		default:
			return nativeFail(vm, "length() expects an array, dict, or string.")
		}
	}
}

func nativePrepend(vm *VM) value.NativeFn {
	return func(argc int, args []value.Value) (value.Value, bool) {
		if argc != 2 {
			return nativeFail(vm, "prepend() takes exactly 2 arguments.")
		}
		arr, ok := args[0].(*value.Array)
		if !ok {
			return nativeFail(vm, "prepend() expects an array as its first argument.")
		}
		arr.Prepend(args[1])
		return arr, true
	}
}

func nativeAppend(vm *VM) value.NativeFn {
	return func(argc int, args []value.Value) (value.Value, bool) {
		if argc != 2 {
			return nativeFail(vm, "append() takes exactly 2 arguments.")
		}
		arr, ok := args[0].(*value.Array)
		if !ok {
			return nativeFail(vm, "append() expects an array as its first argument.")
		}
		arr.Append(args[1])
		return arr, true
	}
}

func nativeHead(vm *VM) value.NativeFn {
	return func(argc int, args []value.Value) (value.Value, bool) {
		if argc != 1 {
			return nativeFail(vm, "head() takes exactly 1 argument.")
		}
		arr, ok := args[0].(*value.Array)
		if !ok {
			return nativeFail(vm, "head() expects an array.")
		}
		v, ok := arr.Head()
		if !ok {
			return nativeFail(vm, "head() called on an empty array.")
		}
		return v, true
	}
}

func nativeTail(vm *VM) value.NativeFn {
	return func(argc int, args []value.Value) (value.Value, bool) {
		if argc != 1 {
			return nativeFail(vm, "tail() takes exactly 1 argument.")
		}
		arr, ok := args[0].(*value.Array)
		if !ok {
			return nativeFail(vm, "tail() expects an array.")
		}
		v, ok := arr.Tail()
		if !ok {
			return nativeFail(vm, "tail() called on an empty array.")
		}
		return v, true
	}
}

func nativeRest(vm *VM) value.NativeFn {
	return func(argc int, args []value.Value) (value.Value, bool) {
		if argc != 1 {
			return nativeFail(vm, "rest() takes exactly 1 argument.")
		}
		arr, ok := args[0].(*value.Array)
		if !ok {
			return nativeFail(vm, "rest() expects an array.")
		}
		rest := arr.Rest()
		vm.alloc.Track(rest)
		return rest, true
	}
}

// remove(d, key) deletes key from a dict and returns the dict, per spec.md
// §6's short list of array/dict natives.
func nativeRemove(vm *VM) value.NativeFn {
	return func(argc int, args []value.Value) (value.Value, bool) {
		if argc != 2 {
			return nativeFail(vm, "remove() takes exactly 2 arguments.")
		}
		dict, ok := args[0].(*value.Dict)
		if !ok {
			return nativeFail(vm, "remove() expects a dict as its first argument.")
		}
		key, ok := args[1].(*value.String)
		if !ok {
			return nativeFail(vm, "remove() expects a string key.")
		}
		dict.Delete(key.Go())
		return dict, true
	}
}
