// Package errs provides structured error handling with operation stacks,
// error kinds and HTTP rendering.
//
// The design (and most of the semantics) follows
// https://github.com/gilcrest/diygoapi and, transitively, the upspin
// error handling described in https://commandcenter.blogspot.com/2017/12/error-handling-in-upspin.html
package errs

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
)

// Op describes an operation, usually as the type and method name of the
// caller, e.g. "syncService.PushStories".
type Op string

// Parameter represents the parameter related to the error.
type Parameter string

// UserName is the name of the user attempting the operation.
type UserName string

// Kind defines the kind or class of an error.
type Kind uint8

const (
	Other           Kind = iota // Unclassified error
	Invalid                     // Invalid operation for this type of item
	IO                          // External I/O error such as network failure
	Exist                       // Item already exists
	NotExist                    // Item does not exist
	Internal                    // Internal error or inconsistency
	Database                    // Error from the database
	Validation                  // Input validation error
	Unanticipated               // Unanticipated error
	InvalidRequest              // Invalid request
	Unauthenticated             // Caller is not authenticated
	Unauthorized                // Caller is authenticated, but not allowed
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "other_error"
	case Invalid:
		return "invalid_operation"
	case IO:
		return "I/O_error"
	case Exist:
		return "item_already_exists"
	case NotExist:
		return "item_does_not_exist"
	case Internal:
		return "internal_error"
	case Database:
		return "database_error"
	case Validation:
		return "input_validation_error"
	case Unanticipated:
		return "unanticipated_error"
	case InvalidRequest:
		return "invalid_request_error"
	case Unauthenticated:
		return "unauthenticated_request"
	case Unauthorized:
		return "unauthorized_request"
	}

	return "unknown_error_kind"
}

// Error is the fundamental error struct. The zero value of every field is
// meaningful and elided when rendering.
type Error struct {
	User  UserName
	Kind  Kind
	Op    Op
	Param Parameter
	Err   error
}

func (e *Error) Error() string {
	b := new(bytes.Buffer)

	if e.Kind != 0 {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}

	if e.Err != nil {
		pad(b, ": ")
		b.WriteString(e.Err.Error())
	}

	if b.Len() == 0 {
		return "no error"
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) isZero() bool {
	return e.User == "" && e.Kind == 0 && e.Op == "" && e.Param == "" && e.Err == nil
}

// pad appends str to the buffer if the buffer already has some data.
func pad(b *bytes.Buffer, str string) {
	if b.Len() == 0 {
		return
	}

	b.WriteString(str)
}

// E builds an error from its arguments. There must be at least one argument
// or E panics. The type of each argument determines its meaning:
//
//	Op: the operation being performed
//	UserName: the user attempting the operation
//	Kind: the class of error
//	Parameter: the request parameter related to the error
//	string: treated as an error message
//	error: the underlying error
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("call to errs.E with no arguments")
	}

	e := &Error{}
	for _, arg := range args {
		switch arg := arg.(type) {
		case Op:
			e.Op = arg
		case string:
			e.Err = errors.New(arg)
		case UserName:
			e.User = arg
		case Kind:
			e.Kind = arg
		case Parameter:
			e.Param = arg
		case *Error:
			copied := *arg
			e.Err = &copied
		case error:
			e.Err = arg
		case nil:
			continue
		default:
			_, file, line, _ := runtime.Caller(1)
			return fmt.Errorf("errs.E: bad call from %s:%d: %v, unknown type %T, value %v in error call", file, line, args, arg, arg)
		}
	}

	prev, ok := e.Err.(*Error)
	if !ok {
		return e
	}

	// Flatten fields that did not change between the wrapped and the
	// wrapping error, so the chain stays readable.
	if prev.Kind == e.Kind {
		prev.Kind = Other
	}

	if e.Kind == Other {
		e.Kind = prev.Kind
		prev.Kind = Other
	}

	if e.Param == "" {
		e.Param = prev.Param
		prev.Param = ""
	}

	if e.User == "" {
		e.User = prev.User
		prev.User = ""
	}

	if prev.isZero() {
		e.Err = prev.Err
	}

	return e
}

// Str returns an error with the supplied text. It is a convenience for use
// at the end of a call to E.
func Str(text string) error {
	return errors.New(text)
}

// Match compares err against the template error. Non-zero fields of the
// template must match exactly; the Err field, when set, must match
// recursively.
func Match(template, err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}

	t, ok := template.(*Error)
	if !ok {
		return false
	}

	if t.Op != "" && e.Op != t.Op {
		return false
	}

	if t.Kind != Other && e.Kind != t.Kind {
		return false
	}

	if t.User != "" && e.User != t.User {
		return false
	}

	if t.Param != "" && e.Param != t.Param {
		return false
	}

	if t.Err != nil {
		if e2, ok := t.Err.(*Error); ok {
			return Match(e2, e.Err)
		}

		if e.Err == nil || e.Err.Error() != t.Err.Error() {
			return false
		}
	}

	return true
}

// KindIs reports whether err, or any error wrapped inside it, is of the
// given Kind.
func KindIs(kind Kind, err error) bool {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind != Other {
			return e.Kind == kind
		}

		if e.Err != nil {
			return KindIs(kind, e.Err)
		}
	}

	return false
}

// OpStack returns the op stack of the error chain, outermost first. Useful
// as a structured log field when an error bubbles up from deep inside the
// service.
func OpStack(err error) []string {
	type o struct {
		Op    string
		Order int
	}

	e := err
	i := 0
	var ops []o

	for errors.Unwrap(e) != nil {
		var errsError *Error
		if errors.As(e, &errsError) {
			if errsError.Op != "" {
				ops = append(ops, o{Op: string(errsError.Op), Order: i})
			}
		}

		e = errors.Unwrap(e)
		i++
	}

	stack := make([]string, 0, len(ops))
	for _, op := range ops {
		stack = append(stack, op.Op)
	}

	return stack
}
