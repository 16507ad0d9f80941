package dto

import "maa-remote/backend/app/models"

// TaskCreate is the admin payload for enqueueing a task.
type TaskCreate struct {
	Type     string         `json:"type"`
	Params   models.JSONMap `json:"params"`
	Priority int            `json:"priority"`
}

// ErrorResponse is the structured error body for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
