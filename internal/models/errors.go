package models

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeConfiguration represents missing upstream configuration, e.g.
	// the invocation log group does not exist because logging is not enabled
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeAuthorization represents insufficient permission to query (403)
	ErrorTypeAuthorization ErrorType = "authorization"
	// ErrorTypeCredentialsExpired represents expired AWS credentials (401)
	ErrorTypeCredentialsExpired ErrorType = "credentials_expired"
	// ErrorTypeNoCredentials represents missing AWS credentials (401)
	ErrorTypeNoCredentials ErrorType = "no_credentials"
	// ErrorTypeQueryFailed represents a query the external service reported as failed
	ErrorTypeQueryFailed ErrorType = "query_failed"
	// ErrorTypeQueryCancelled represents a query cancelled on the external service
	ErrorTypeQueryCancelled ErrorType = "query_cancelled"
	// ErrorTypeQueryTimeout represents a query that exceeded the polling bound
	ErrorTypeQueryTimeout ErrorType = "query_timeout"
	// ErrorTypeEmptyResult represents a successful query with zero matching
	// records: benign, distinguishes "nothing happened" from "something failed"
	ErrorTypeEmptyResult ErrorType = "empty_result"
	// ErrorTypeValidation represents caller input validation errors (400)
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeInternal represents internal server errors (500)
	ErrorTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Retryable  bool      `json:"retryable"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap allows error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsEmptyResult reports whether the error is the benign no-data case.
func (e *AppError) IsEmptyResult() bool {
	return e.Type == ErrorTypeEmptyResult
}

// GetStatusCode returns the HTTP status code for the error
func (e *AppError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeCredentialsExpired, ErrorTypeNoCredentials:
		return http.StatusUnauthorized
	case ErrorTypeAuthorization:
		return http.StatusForbidden
	case ErrorTypeQueryFailed, ErrorTypeQueryCancelled:
		return http.StatusBadGateway
	case ErrorTypeQueryTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeEmptyResult:
		// The dashboard treats no-data as a renderable payload, not a failure.
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// NewConfigurationError creates an error for a missing invocation log group
func NewConfigurationError(logGroup string, cause error) *AppError {
	return &AppError{
		Type: ErrorTypeConfiguration,
		Message: fmt.Sprintf(
			"CloudWatch log group %q not found. Bedrock model invocation logging may not be enabled in your AWS account. Check AWS Console > CloudWatch > Log groups.",
			logGroup),
		Retryable: false,
		Cause:     cause,
	}
}

// NewAuthorizationError creates an access-denied error
func NewAuthorizationError(cause error) *AppError {
	return &AppError{
		Type: ErrorTypeAuthorization,
		Message: "Access Denied: your AWS credentials do not have permission to access CloudWatch Logs. " +
			"Required permissions: logs:StartQuery, logs:GetQueryResults.",
		Retryable: false,
		Cause:     cause,
	}
}

// NewCredentialsExpiredError creates an expired-credentials error
func NewCredentialsExpiredError(cause error) *AppError {
	return &AppError{
		Type:      ErrorTypeCredentialsExpired,
		Message:   "AWS credentials have expired. Please refresh your credentials.",
		Retryable: true,
		Cause:     cause,
	}
}

// NewNoCredentialsError creates a missing-credentials error
func NewNoCredentialsError(cause error) *AppError {
	return &AppError{
		Type: ErrorTypeNoCredentials,
		Message: "No AWS credentials found. Configure credentials via the AWS CLI (aws configure) " +
			"or set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY environment variables.",
		Retryable: false,
		Cause:     cause,
	}
}

// NewQueryFailedError creates an error for a query the service reported as failed
func NewQueryFailedError(detail string, cause error) *AppError {
	msg := "CloudWatch Logs Insights query failed"
	if detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}
	return &AppError{
		Type:      ErrorTypeQueryFailed,
		Message:   msg,
		Retryable: true,
		Cause:     cause,
	}
}

// NewQueryCancelledError creates an error for an externally cancelled query
func NewQueryCancelledError(cause error) *AppError {
	return &AppError{
		Type:      ErrorTypeQueryCancelled,
		Message:   "CloudWatch Logs Insights query was cancelled",
		Retryable: true,
		Cause:     cause,
	}
}

// NewQueryTimeoutError creates an error for a query that outlived the poll bound
func NewQueryTimeoutError(maxWait time.Duration) *AppError {
	return &AppError{
		Type:      ErrorTypeQueryTimeout,
		Message:   fmt.Sprintf("CloudWatch Logs Insights query timeout (> %s)", maxWait),
		Retryable: true,
	}
}

// NewEmptyResultError creates the benign no-data-in-window result
func NewEmptyResultError(dateRange string) *AppError {
	return &AppError{
		Type: ErrorTypeEmptyResult,
		Message: fmt.Sprintf(
			"No Bedrock invocation logs found in CloudWatch Logs from %s. Make sure Bedrock logging is enabled and you have made some API calls.",
			dateRange),
		Retryable: true,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Retryable:  false,
		Cause:      cause,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Retryable:  false,
		Cause:      cause,
	}
}

// SanitizeError sanitizes an error for external consumption
func SanitizeError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Type:       appErr.Type,
			Message:    appErr.Message,
			StatusCode: appErr.GetStatusCode(),
			Retryable:  appErr.Retryable,
			// Don't expose internal cause
		}
	}

	return NewInternalError("an unexpected error occurred", err)
}
