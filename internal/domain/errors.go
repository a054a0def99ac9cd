package domain

import (
	"errors"
	"fmt"
	"strings"
)

type ErrCode string

const (
	CodeValidation         ErrCode = "validation_error"
	CodeUploadFailed       ErrCode = "upload_failed"
	CodeGateway            ErrCode = "gateway_error"
	CodeUnauthorized       ErrCode = "unauthorized"
	CodeNotFound           ErrCode = "not_found"
	CodeInvalidState       ErrCode = "invalid_state"
	CodeTransitionInFlight ErrCode = "transition_in_flight"
	CodeSessionEnded       ErrCode = "session_ended"
)

// AppError is the error every user action ends in. Message is always a
// human-readable Vietnamese string; Details carries the per-field messages of
// a failed validation pass.
type AppError struct {
	Code    ErrCode
	Message string
	Details []string
	Err     error
}

func (e *AppError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if len(e.Details) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Details, "; "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *AppError) Unwrap() error { return e.Err }

func ErrValidation(msg string) error { return &AppError{Code: CodeValidation, Message: msg} }

// ErrValidationList wraps the ordered output of a validation pass.
func ErrValidationList(details []string) error {
	return &AppError{Code: CodeValidation, Message: MsgFormInvalid, Details: details}
}

func ErrUploadFailed(err error) error {
	return &AppError{Code: CodeUploadFailed, Message: MsgUploadFailed, Err: err}
}

func ErrGateway(msg string, err error) error {
	return &AppError{Code: CodeGateway, Message: msg, Err: err}
}

func ErrUnauthorized(msg string) error { return &AppError{Code: CodeUnauthorized, Message: msg} }
func ErrNotFound(msg string) error     { return &AppError{Code: CodeNotFound, Message: msg} }
func ErrInvalidState(msg string) error { return &AppError{Code: CodeInvalidState, Message: msg} }

func ErrTransitionInFlight() error {
	return &AppError{Code: CodeTransitionInFlight, Message: MsgTransitionInFlight}
}

func ErrSessionEnded() error {
	return &AppError{Code: CodeSessionEnded, Message: MsgSessionEnded}
}

// Is reports whether err is an AppError with the given code.
func Is(err error, code ErrCode) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
