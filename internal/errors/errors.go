package errors

import "fmt"

// ErrorCode represents a snipstash error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrQuotaExceeded  ErrorCode = "QUOTA_EXCEEDED"  // 402
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrCategoryInUse  ErrorCode = "CATEGORY_IN_USE" // 409
	ErrPersistence    ErrorCode = "PERSISTENCE"     // 500
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// StashError represents a structured error with code, status, and details.
type StashError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *StashError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *StashError {
	return &StashError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewQuotaExceeded creates a 402 error for the free-tier snippet cap.
func NewQuotaExceeded(limit int) *StashError {
	return &StashError{
		Code:    ErrQuotaExceeded,
		Status:  402,
		Message: fmt.Sprintf("free tier allows up to %d snippets; upgrade to add more", limit),
		Details: map[string]any{"limit": limit},
	}
}

// NewSnippetNotFound creates a 404 error for when a snippet cannot be found.
func NewSnippetNotFound(id string) *StashError {
	return &StashError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("snippet not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewCategoryNotFound creates a 404 error for when a category cannot be found.
func NewCategoryNotFound(id string) *StashError {
	return &StashError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("category not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewCategoryInUse creates a 409 error for deleting a category that still
// has snippets referencing it.
func NewCategoryInUse(id string, refs int) *StashError {
	return &StashError{
		Code:    ErrCategoryInUse,
		Status:  409,
		Message: fmt.Sprintf("category %s is referenced by %d snippet(s) and cannot be deleted", id, refs),
		Details: map[string]any{"id": id, "snippets": refs},
	}
}

// NewPersistence creates a 500 error for durable-store failures.
func NewPersistence(slot string, err error) *StashError {
	msg := fmt.Sprintf("durable store failure on slot %q", slot)
	if err != nil {
		msg = fmt.Sprintf("durable store failure on slot %q: %v", slot, err)
	}
	return &StashError{
		Code:    ErrPersistence,
		Status:  500,
		Message: msg,
		Details: map[string]any{"slot": slot},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *StashError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &StashError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a StashError with the given code.
func Is(err error, code ErrorCode) bool {
	if sErr, ok := err.(*StashError); ok {
		return sErr.Code == code
	}
	return false
}
