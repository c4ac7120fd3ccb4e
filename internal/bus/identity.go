package bus

import (
	"reflect"
	"runtime"
	"strings"
)

// lambdaKey is the timing key suffix for handlers with no owning type.
const lambdaKey = "Lambda"

// ownerName returns the receiver type name of a method value such as
// s.Handle, or "" for plain functions and closures.
func ownerName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	name, ok := strings.CutSuffix(f.Name(), "-fm")
	if !ok {
		return ""
	}
	name = stripTypeArgs(name)
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	recv := name[:i]
	if j := strings.LastIndex(recv, "."); j >= 0 {
		recv = recv[j+1:]
	}
	recv = strings.TrimPrefix(recv, "(*")
	recv = strings.TrimSuffix(recv, ")")
	return recv
}

// stripTypeArgs removes bracketed type argument lists from a runtime
// function name.
func stripTypeArgs(name string) string {
	var b strings.Builder
	depth := 0
	for _, r := range name {
		switch {
		case r == '[':
			depth++
		case r == ']' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// typeName returns the bare name of t, looking through pointers.
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if n := t.Name(); n != "" {
		return n
	}
	return t.String()
}

// EventName returns the type name used for ev in timing keys and logs.
func EventName(ev Event) string {
	return typeName(reflect.TypeOf(ev))
}
