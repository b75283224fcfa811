package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeState      ErrorType = "STATE_ERROR"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeDuplicate  ErrorType = "DUPLICATE_ASSIGNMENT"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidRange     ErrorCode = "INVALID_DATE_RANGE"
	ErrCodeInvalidShift     ErrorCode = "INVALID_SHIFT"
	ErrCodeInvalidReason    ErrorCode = "INVALID_REASON"

	ErrCodeGuardNotFound      ErrorCode = "GUARD_NOT_FOUND"
	ErrCodeGuardNotActive     ErrorCode = "GUARD_NOT_ACTIVE"
	ErrCodeGuardIsRotating    ErrorCode = "GUARD_IS_ROTATING"
	ErrCodeGuardNotRotating   ErrorCode = "GUARD_NOT_ROTATING"
	ErrCodeGuardHasDeployment ErrorCode = "GUARD_HAS_DEPLOYMENT"

	ErrCodeSiteNotFound     ErrorCode = "SITE_NOT_FOUND"
	ErrCodeSiteInactive     ErrorCode = "SITE_INACTIVE"
	ErrCodeSiteAtCapacity   ErrorCode = "SITE_AT_CAPACITY"
	ErrCodeInvalidHeadcount ErrorCode = "INVALID_HEADCOUNT"

	ErrCodeNoOpenDeployment    ErrorCode = "NO_OPEN_DEPLOYMENT"
	ErrCodeDeploymentOverlap   ErrorCode = "DEPLOYMENT_OVERLAP"
	ErrCodeAlreadyDeployedHere ErrorCode = "ALREADY_DEPLOYED_AT_SITE"

	ErrCodeLeaveNotFound       ErrorCode = "LEAVE_NOT_FOUND"
	ErrCodeLeaveOverlap        ErrorCode = "LEAVE_OVERLAP"
	ErrCodeInvalidLeaveType    ErrorCode = "INVALID_LEAVE_TYPE"
	ErrCodeInvalidLeaveStatus  ErrorCode = "INVALID_LEAVE_STATUS"
	ErrCodeLeaveAlreadyStarted ErrorCode = "LEAVE_ALREADY_STARTED"
	ErrCodeCommentRequired     ErrorCode = "COMMENT_REQUIRED"
	ErrCodeLeaveNotApproved    ErrorCode = "LEAVE_NOT_APPROVED"
	ErrCodeGuardOnLeave        ErrorCode = "GUARD_ON_LEAVE"

	ErrCodeAssignmentNotFound    ErrorCode = "ASSIGNMENT_NOT_FOUND"
	ErrCodeAssignmentOverlap     ErrorCode = "ASSIGNMENT_OVERLAP"
	ErrCodeAssignmentClosed      ErrorCode = "ASSIGNMENT_CLOSED"
	ErrCodeReplacedGuardMismatch ErrorCode = "REPLACED_GUARD_MISMATCH"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			messages := make([]string, len(validationErrors.Errors))
			for i, err := range validationErrors.Errors {
				messages[i] = err.Message
			}
			return strings.Join(messages, "; ")
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

// NewStateError reports a transition that is illegal from the entity's current state.
func NewStateError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeState,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewDuplicateAssignmentError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeDuplicate,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func isType(err error, t ErrorType) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == t
}

func IsValidation(err error) bool { return isType(err, ErrorTypeValidation) }

func IsState(err error) bool { return isType(err, ErrorTypeState) }

func IsNotFound(err error) bool { return isType(err, ErrorTypeNotFound) }

func IsDuplicateAssignment(err error) bool { return isType(err, ErrorTypeDuplicate) }

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
