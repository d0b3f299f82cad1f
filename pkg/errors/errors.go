package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeAlreadySent        Code = "ALREADY_SENT"
	CodeBadAttachmentType  Code = "BAD_ATTACHMENT_TYPE"
	CodeAttachmentTooLarge Code = "ATTACHMENT_TOO_LARGE"
	CodeIdempotency        Code = "IDEMPOTENCY_KEY_REUSED"
	CodeInternal           Code = "INTERNAL_ERROR"
	CodeDependency         Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a code is surfaced over HTTP.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
	// ClientFacing codes expose the error message itself instead of PublicMessage.
	ClientFacing bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
		ClientFacing:   true,
	},
	CodeUnauthorized: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "authentication required",
		ClientFacing:  true,
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "resource not found",
		ClientFacing:  true,
	},
	CodeConflict: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "conflict detected",
		ClientFacing:  true,
	},
	CodeAlreadySent: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "distribution already sent",
		DetailsAllowed: true,
		ClientFacing:   true,
	},
	CodeBadAttachmentType: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "file type not allowed",
		DetailsAllowed: true,
		ClientFacing:   true,
	},
	CodeAttachmentTooLarge: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "file too large",
		DetailsAllowed: true,
		ClientFacing:   true,
	},
	CodeIdempotency: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "idempotency key reused",
		DetailsAllowed: true,
		ClientFacing:   true,
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "internal server error",
	},
	CodeDependency: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Retryable:      true,
		PublicMessage:  "dependency unavailable",
		DetailsAllowed: true,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether any typed error in the chain carries code.
func IsCode(err error, code Code) bool {
	for err != nil {
		var typed *Error
		if !stdErrors.As(err, &typed) {
			return false
		}
		if typed.code == code {
			return true
		}
		err = typed.cause
	}
	return false
}
