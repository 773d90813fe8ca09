package analyzer

import "fmt"

// Error is a fatal analysis failure. It aborts manifest generation
// with file and method context; no partial result is returned.
type Error struct {
	File       string
	Line       int
	Controller string
	Method     string
	Msg        string
}

func (e *Error) Error() string {
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	subject := e.Controller
	if e.Method != "" {
		subject = e.Controller + "." + e.Method
	}
	if subject == "" {
		return fmt.Sprintf("analyzer: %s: %s", loc, e.Msg)
	}
	return fmt.Sprintf("analyzer: %s: %s: %s", loc, subject, e.Msg)
}

func errorf(file string, line int, controller, method, format string, args ...any) *Error {
	return &Error{
		File:       file,
		Line:       line,
		Controller: controller,
		Method:     method,
		Msg:        fmt.Sprintf(format, args...),
	}
}
