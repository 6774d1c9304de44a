// Package checkpoint decorates errors with the file and line of the caller,
// which results in something similar to a stacktrace but only at the points
// someone considered interesting.
// Every error wrapped by a checkpoint stays visible to errors.Is and
// errors.As.
package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
)

// From wraps an error by a new checkpoint which adds the caller information.
// It returns nil if err == nil.
func From(err error) error {
	// io.EOF must be returned as io.EOF directly
	// https://github.com/golang/go/issues/39155
	if err == io.EOF {
		return io.EOF
	}
	if err == io.ErrUnexpectedEOF {
		return io.ErrUnexpectedEOF
	}

	if err == nil {
		return nil
	}

	_, file, line, ok := runtime.Caller(1)

	return &checkpoint{
		err:  err,
		prev: nil,

		callerOk: ok,
		file:     filepath.Base(file),
		line:     line,
	}
}

// Wrap adds a checkpoint with caller information to prev and attaches err
// which further describes it.
// Returns nil if prev == nil.
// The common use is to predefine errors and attach them later:
//  var ErrSomethingWentWrong = errors.New("something went wrong")
//
//  func someFunction() error {
//  	err := somethingThatMayFail()
//  	return checkpoint.Wrap(err, ErrSomethingWentWrong)
//  }
// Both the predefined error and the original one stay checkable:
//  if errors.Is(err, ErrSomethingWentWrong) { ...
func Wrap(prev, err error) error {
	// io.EOF must be returned as io.EOF directly
	// https://github.com/golang/go/issues/39155
	if prev == io.EOF {
		return io.EOF
	}

	if prev == nil {
		return nil
	}

	_, file, line, ok := runtime.Caller(1)

	return &checkpoint{
		err:  err,
		prev: prev,

		callerOk: ok,
		file:     filepath.Base(file),
		line:     line,
	}
}

// Wrapf attaches a formatted detail message to err and adds a checkpoint with
// caller information. Unlike Wrap it always creates the checkpoint, so it
// suits the case where err is a predefined error and the detail is built on
// the spot:
//  return checkpoint.Wrapf(ErrSomethingWentWrong, "cluster %d out of range", c)
func Wrapf(err error, format string, a ...interface{}) error {
	_, file, line, ok := runtime.Caller(1)

	return &checkpoint{
		err:  err,
		prev: fmt.Errorf(format, a...),

		callerOk: ok,
		file:     filepath.Base(file),
		line:     line,
	}
}

type checkpoint struct {
	err  error
	prev error

	callerOk bool
	file     string
	line     int
}

func (e *checkpoint) Error() string {
	caller := "File: unknown"
	if e.callerOk {
		caller = fmt.Sprintf("File: %s:%d", e.file, e.line)
	}

	if e.prev == nil {
		return fmt.Sprintf("%s\n\t%v", caller, e.err)
	}

	// Indent the previous error unless it is a checkpoint itself and
	// therefore already formatted.
	prevErrString := e.prev.Error()
	if _, ok := e.prev.(*checkpoint); !ok {
		prevErrString = "\t" + strings.ReplaceAll(prevErrString, "\n", "\n\t")
	}

	if e.err == nil {
		return fmt.Sprintf("%s\n%v", caller, prevErrString)
	}

	return fmt.Sprintf("%s\n\t%v\n%v", caller, e.err, prevErrString)
}

func (e *checkpoint) Unwrap() error {
	return e.prev
}

func (e *checkpoint) Is(target error) bool {
	return errors.Is(e.err, target)
}

func (e *checkpoint) As(target interface{}) bool {
	return errors.As(e.err, target)
}
