package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"maa-remote/backend/app/dto"
	"maa-remote/backend/app/models"
	"maa-remote/backend/app/services"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// MaaController implements the agent-facing dispatch protocol: getTask
// (poll + claim) and reportStatus (outcome + ownership check). Each handler
// runs its store work in a single transaction, so a rejected request leaves
// no trace: no user or device created, no liveness refreshed.
type MaaController struct {
	db           *gorm.DB
	devices      *services.DeviceService
	tasks        *services.TaskService
	maxLogChars  int
	pollInterval float64
	log          zerolog.Logger
}

func NewMaaController(db *gorm.DB, devices *services.DeviceService, tasks *services.TaskService, maxLogChars int, pollInterval float64, log zerolog.Logger) *MaaController {
	return &MaaController{
		db:           db,
		devices:      devices,
		tasks:        tasks,
		maxLogChars:  maxLogChars,
		pollInterval: pollInterval,
		log:          log,
	}
}

// GetTask handles an agent poll. Side effects in order: ensure user,
// register-or-touch device, claim at most one pending task, committed as one
// unit. An empty queue is a normal response, not an error.
func (c *MaaController) GetTask(w http.ResponseWriter, r *http.Request) {
	var req dto.GetTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.User == "" || req.Device == "" {
		writeError(w, http.StatusBadRequest, "user and device are required")
		return
	}

	var task *models.Task
	err := c.db.Transaction(func(tx *gorm.DB) error {
		devices := c.devices.WithTx(tx)
		user, err := devices.EnsureUser(req.User)
		if err != nil {
			return err
		}
		device, err := devices.RegisterOrTouch(user, req.Device, "", req.AgentVersion)
		if err != nil {
			return err
		}
		task, err = c.tasks.WithTx(tx).ClaimNext(user.UserKey, device.Identifier)
		return err
	})
	if err != nil {
		c.storeFailure(w, err, "poll")
		return
	}

	resp := dto.GetTaskResponse{Tasks: []dto.TaskEnvelope{}, PollInterval: c.pollInterval}
	if task != nil {
		params := task.Params
		if params == nil {
			params = models.JSONMap{}
		}
		resp.Tasks = append(resp.Tasks, dto.TaskEnvelope{
			ID:       task.TaskUUID,
			Type:     task.Type,
			Params:   params,
			Priority: task.Priority,
		})
		c.log.Info().Str("task", task.TaskUUID).Str("type", task.Type).
			Str("device", req.Device).Msg("dispatched task")
	}
	writeJSON(w, http.StatusOK, resp)
}

// ReportStatus handles an agent's execution outcome. The task must exist and
// belong to the reporting (user, device); the log is truncated to its tail
// before the terminal transition is applied. The whole report, including the
// device touch, commits atomically; a rejection rolls everything back.
func (c *MaaController) ReportStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.ReportStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.User == "" || req.Device == "" || req.TaskID == "" {
		writeError(w, http.StatusBadRequest, "user, device and taskId are required")
		return
	}
	status := models.TaskStatus(req.Status)
	if !status.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "unknown status value")
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		devices := c.devices.WithTx(tx)
		tasks := c.tasks.WithTx(tx)

		user, err := devices.EnsureUser(req.User)
		if err != nil {
			return err
		}
		// A report may be the device's first contact if the poll response that
		// carried the task was lost before this process restarted.
		device, err := devices.Lookup(user.UserKey, req.Device)
		if err != nil {
			return err
		}
		if device == nil {
			if device, err = devices.RegisterOrTouch(user, req.Device, "", ""); err != nil {
				return err
			}
		}

		task, err := tasks.ResolveOwned(user.UserKey, device.Identifier, req.TaskID)
		if err != nil {
			return err
		}

		truncated := services.TruncateTail(req.Log, c.maxLogChars)
		if err := tasks.ApplyReport(task, status, truncated, "", req.Result, req.Stats); err != nil {
			return err
		}

		// Re-touch picks up an agent version carried in the result payload.
		agentVersion := ""
		if v, ok := req.Result["agentVersion"].(string); ok {
			agentVersion = v
		}
		_, err = devices.RegisterOrTouch(user, device.Identifier, "", agentVersion)
		return err
	})
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, services.ErrOwnershipConflict):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrStatusConflict):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, services.ErrInvalidTransition):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		c.storeFailure(w, err, "apply report")
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (c *MaaController) storeFailure(w http.ResponseWriter, err error, op string) {
	c.log.Error().Err(err).Str("op", op).Msg("store failure")
	writeError(w, http.StatusInternalServerError, "internal error")
}
