package service

import (
	"errors"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/database"
)

// ErrorKind classifies a domain failure. The HTTP layer maps each kind to a
// status code.
type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"
	KindNotFound        ErrorKind = "not_found"
	KindNotAuthorized   ErrorKind = "not_authorized"
	KindUnauthenticated ErrorKind = "unauthenticated"
)

// Stable error codes carried in API responses.
const (
	CodeInvalidValue       = "invalid_value"
	CodeEmptyOrDuplicate   = "empty_or_duplicate"
	CodeAlreadyExists      = "already_exists"
	CodeSelfFollow         = "self_follow"
	CodeRestrictedUsername = "restricted_username"
	CodeEntryNotFound      = "entry_not_found"
	CodeNotFound           = "not_found"
	CodeNotAuthorized      = "not_authorized"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInvalidToken       = "invalid_token"
)

// Error is a domain failure with a kind, a stable code and the offending field.
type Error struct {
	Kind    ErrorKind
	Code    string
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is matches on kind, and on code when the target carries one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrInvalidValue       = &Error{Kind: KindValidation, Code: CodeInvalidValue, Message: "invalid value"}
	ErrEmptyOrDuplicate   = &Error{Kind: KindValidation, Code: CodeEmptyOrDuplicate, Message: "must not be empty or contain duplicates"}
	ErrAlreadyExists      = &Error{Kind: KindValidation, Code: CodeAlreadyExists, Message: "already exists"}
	ErrSelfFollow         = &Error{Kind: KindValidation, Code: CodeSelfFollow, Message: "you cannot subscribe to yourself"}
	ErrRestrictedUsername = &Error{Kind: KindValidation, Code: CodeRestrictedUsername, Message: "this username is reserved"}
	ErrEntryNotFound      = &Error{Kind: KindValidation, Code: CodeEntryNotFound, Message: "entry does not exist"}
	ErrInvalidCredentials = &Error{Kind: KindValidation, Code: CodeInvalidCredentials, Message: "unable to log in with provided credentials"}
	ErrNotFound           = &Error{Kind: KindNotFound, Code: CodeNotFound, Message: "not found"}
	ErrNotAuthorized      = &Error{Kind: KindNotAuthorized, Code: CodeNotAuthorized, Message: "you do not have permission to perform this action"}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Code: CodeInvalidToken, Message: "authentication credentials were not provided or are invalid"}
)

func withDetail(base *Error, field, message string) *Error {
	e := *base
	e.Field = field
	if message != "" {
		e.Message = message
	}
	return &e
}

// withField rebinds a domain error to a different request field.
func withField(err error, field string) error {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return withDetail(domainErr, field, "")
	}
	return err
}

// storageError converts constraint violations raised by the database into
// domain errors. Anything else is returned wrapped.
func storageError(err error, op string) error {
	switch {
	case database.IsUniqueViolation(err):
		return withDetail(ErrEmptyOrDuplicate, "", "duplicate entry")
	case database.IsForeignKeyViolation(err):
		return withDetail(ErrInvalidValue, "", "referenced object does not exist")
	case database.IsCheckViolation(err):
		return withDetail(ErrInvalidValue, "", "value violates a constraint")
	}
	return fmt.Errorf("%s: %w", op, err)
}
