package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	EnigmaErrorBadInput           = "ENIGMA_BAD_INPUT"
	EnigmaErrorNotFound           = "ENIGMA_NOT_FOUND"
	EnigmaErrorNotificationFailed = "ENIGMA_NOTIFICATION_FAILED"
	EnigmaErrorStorageFailure     = "ENIGMA_STORAGE_FAILURE"
	EnigmaErrorInternal           = "ENIGMA_INTERNAL_ERROR"
)

// MapError normalizes any error into a go-errors envelope with an HTTP code
// and text code.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureEnigmaErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not found"), strings.Contains(msg, "no rows"):
		return newEnigmaError(err.Error(), goerrors.CategoryNotFound, EnigmaErrorNotFound)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "exceeds"):
		return newEnigmaError(err.Error(), goerrors.CategoryBadInput, EnigmaErrorBadInput)
	case strings.Contains(msg, "unique"), strings.Contains(msg, "duplicate"):
		return newEnigmaError(err.Error(), goerrors.CategoryConflict, EnigmaErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureEnigmaErrorEnvelope(mapped)
}

func NewValidationError(field string, message string) *goerrors.Error {
	return goerrors.NewValidation("core: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(EnigmaErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}

func NewNotFoundError(message string) *goerrors.Error {
	return newEnigmaError(message, goerrors.CategoryNotFound, EnigmaErrorNotFound)
}

// NewStorageError wraps a record store failure. It is the one error that
// aborts a verification request.
func NewStorageError(err error, operation string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "core: record store "+operation+" failed").
		WithCode(http.StatusInternalServerError).
		WithTextCode(EnigmaErrorStorageFailure).
		WithSeverity(goerrors.SeverityCritical)
}

func NewNotificationError(err error, message string) *goerrors.Error {
	if err == nil {
		return newEnigmaError(message, goerrors.CategoryExternal, EnigmaErrorNotificationFailed)
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, message).
		WithCode(http.StatusBadGateway).
		WithTextCode(EnigmaErrorNotificationFailed)
}

func NewDependencyError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(EnigmaErrorInternal)
}

// IsStorageError reports whether err carries the storage failure text code.
func IsStorageError(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == EnigmaErrorStorageFailure
}

func newEnigmaError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureEnigmaErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureEnigmaErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = enigmaHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultEnigmaTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultEnigmaTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation, goerrors.CategoryConflict:
		return EnigmaErrorBadInput
	case goerrors.CategoryNotFound:
		return EnigmaErrorNotFound
	case goerrors.CategoryExternal:
		return EnigmaErrorNotificationFailed
	default:
		return EnigmaErrorInternal
	}
}

func enigmaHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
