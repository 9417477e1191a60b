package docstore

import (
	"context"
	"errors"
	"fmt"
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindStorageRead
	KindStorageWrite
	KindStorageTimeout
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("record not found")
	ErrStorageRead    = errors.New("storage read failed")
	ErrStorageWrite   = errors.New("storage write failed")
	ErrStorageTimeout = errors.New("storage timeout")
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStorageRead:
		return "storage_read"
	case KindStorageWrite:
		return "storage_write"
	case KindStorageTimeout:
		return "storage_timeout"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindStorageRead:
		return ErrStorageRead
	case KindStorageWrite:
		return ErrStorageWrite
	case KindStorageTimeout:
		return ErrStorageTimeout
	default:
		return nil
	}
}

// Error carries a Kind the boundary layer can map to a response code and a
// human readable message. Err holds the underlying cause, if any.
type Error struct {
	Kind       Kind
	Op         string
	Collection string
	ID         string
	Msg        string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		if s := e.Kind.sentinel(); s != nil {
			msg = s.Error()
		} else {
			msg = "docstore error"
		}
	}

	prefix := e.Op
	if e.Collection != "" {
		prefix = e.Collection + "." + e.Op
	}
	if prefix != "" {
		msg = prefix + ": " + msg
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// Message returns the human readable part of err without op prefixes or causes.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		if de.Msg != "" {
			return de.Msg
		}
		if s := de.Kind.sentinel(); s != nil {
			return s.Error()
		}
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func NewValidationError(op, msg string) error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}

func NewNotFoundError(op, id string) error {
	return &Error{Kind: KindNotFound, Op: op, ID: id, Msg: fmt.Sprintf("record with ID %s not found", id)}
}

func (s *Store) readErr(op string, err error) error {
	if isTimeout(err) {
		return s.timeoutErr(op, err)
	}
	return &Error{Kind: KindStorageRead, Op: op, Collection: s.name, Err: err}
}

func (s *Store) writeErr(op string, err error) error {
	if isTimeout(err) {
		return s.timeoutErr(op, err)
	}
	return &Error{Kind: KindStorageWrite, Op: op, Collection: s.name, Err: err}
}

func (s *Store) timeoutErr(op string, err error) error {
	return &Error{Kind: KindStorageTimeout, Op: op, Collection: s.name, Err: err}
}

func (s *Store) notFound(op, id string) error {
	return &Error{
		Kind:       KindNotFound,
		Op:         op,
		Collection: s.name,
		ID:         id,
		Msg:        fmt.Sprintf("record with ID %s not found", id),
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
