package dto

import "maa-remote/backend/app/models"

// TaskEnvelope is the task descriptor handed to a polling agent.
type TaskEnvelope struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Params   models.JSONMap `json:"params"`
	Priority int            `json:"priority"`
}

// GetTaskRequest is the agent poll payload.
type GetTaskRequest struct {
	User         string         `json:"user"`
	Device       string         `json:"device"`
	AgentVersion string         `json:"agentVersion,omitempty"`
	Capabilities models.JSONMap `json:"capabilities,omitempty"`
	Status       models.JSONMap `json:"status,omitempty"`
}

// GetTaskResponse carries at most one task per poll by protocol design.
type GetTaskResponse struct {
	Tasks        []TaskEnvelope `json:"tasks"`
	PollInterval float64        `json:"pollInterval,omitempty"`
}

// ReportStatusRequest is the agent's execution outcome for one task.
type ReportStatusRequest struct {
	User   string         `json:"user"`
	Device string         `json:"device"`
	TaskID string         `json:"taskId"`
	Status string         `json:"status"`
	Log    string         `json:"log,omitempty"`
	Result models.JSONMap `json:"result,omitempty"`
	Stats  models.JSONMap `json:"stats,omitempty"`
}
