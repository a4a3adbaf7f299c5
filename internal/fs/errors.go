package fs

import (
	"errors"
	"fmt"
	"io/fs"
)

// Failure kinds. Backends map host errors onto these so callers can branch
// without knowing which backend is active.
var (
	ErrNotImplemented    = errors.New("not implemented")
	ErrNotFound          = errors.New("not found")
	ErrPermission        = errors.New("permission denied")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrUnsupportedScheme = fmt.Errorf("unsupported scheme: %w", ErrInvalidAddress)
	ErrIO                = errors.New("i/o failure")
)

// NotImplementedError reports an operation a backend deliberately refuses.
type NotImplementedError struct {
	Method string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("method %s is not implemented", e.Method)
}

// Is lets errors.Is(err, ErrNotImplemented) match.
func (e *NotImplementedError) Is(target error) bool {
	return target == ErrNotImplemented
}

func notImplemented(method string) error {
	return &NotImplementedError{Method: method}
}

// OpError records a failed operation with its address and failure kind.
type OpError struct {
	Op   string
	URL  string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	msg := e.Op
	if e.URL != "" {
		msg += fmt.Sprintf(" %q", e.URL)
	}
	switch {
	case e.Err != nil:
		return msg + ": " + e.Err.Error()
	case e.Kind != nil:
		return msg + ": " + e.Kind.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying error.
func (e *OpError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the failure kind sentinel err matches, or nil.
func KindOf(err error) error {
	for _, k := range []error{ErrNotImplemented, ErrNotFound, ErrPermission, ErrUnsupportedScheme, ErrInvalidAddress, ErrIO} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// hostError maps an error from the host (os, billy) onto a kind.
func hostError(op, u string, err error) error {
	if err == nil {
		return nil
	}
	var oe *OpError
	if errors.As(err, &oe) {
		return err
	}
	kind := ErrIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = ErrPermission
	case errors.Is(err, fs.ErrInvalid):
		kind = ErrInvalidAddress
	}
	return &OpError{Op: op, URL: u, Kind: kind, Err: err}
}

// withOp relabels an *OpError produced by a helper with the caller's op.
func withOp(op string, err error) error {
	var oe *OpError
	if errors.As(err, &oe) {
		cp := *oe
		cp.Op = op
		return &cp
	}
	return err
}
