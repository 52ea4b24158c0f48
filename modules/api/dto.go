package api

import "github.com/example/task-tracker-demo/modules/activity"

// UpdateStatusRequest is the HTTP body for PATCH /tasks/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ActivityResponse is the HTTP response for the activity feed.
type ActivityResponse struct {
	Entries []activity.Entry `json:"entries"`
	Total   int              `json:"total"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// MessageResponse is a plain informational reply.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the HTTP response for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Error codes carried in ErrorResponse.Error.
const (
	codeInvalidRequest   = "invalid_request"
	codeValidation       = "validation_error"
	codeNotFound         = "not_found"
	codeStoreUnavailable = "store_unavailable"
	codeServerError      = "server_error"
)
