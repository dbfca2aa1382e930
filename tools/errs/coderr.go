package errs

import (
	"strconv"
	"strings"

	pkgerr "github.com/pkg/errors"
)

// CodeError carries a stable numeric code alongside the message so that
// boundary layers (HTTP, websocket close frames) can map it without string
// matching.
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

// Wrap attaches a stack trace to the coded error.
func (e *CodeError) Wrap() error {
	return pkgerr.WithStack(e)
}

func (e *CodeError) WrapMsg(msg string) error {
	return pkgerr.Wrap(e, msg)
}

func (e *CodeError) Is(err error) bool {
	other, ok := Unwrap(err).(*CodeError)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

// Unwrap walks the cause chain to the innermost error.
func Unwrap(err error) error {
	for err != nil {
		unwrap, ok := err.(interface {
			error
			Unwrap() error
		})
		if !ok {
			break
		}
		next := unwrap.Unwrap()
		if next == nil {
			return err
		}
		err = next
	}
	return err
}

// Wrap attaches a stack trace to an arbitrary error.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return pkgerr.WithStack(err)
}

func WrapMsg(err error, msg string) error {
	if err == nil {
		return nil
	}
	return pkgerr.Wrap(err, msg)
}
