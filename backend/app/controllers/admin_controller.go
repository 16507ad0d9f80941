package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"maa-remote/backend/app/dto"
	"maa-remote/backend/app/models"
	"maa-remote/backend/app/services"

	"github.com/rs/zerolog"
)

const (
	defaultTaskListLimit = 20
	maxTaskListLimit     = 100
)

// AdminController exposes the management API: device listing, recent tasks,
// and task creation. Enqueueing here is the only way work enters the queue.
type AdminController struct {
	devices *services.DeviceService
	tasks   *services.TaskService
	log     zerolog.Logger
}

func NewAdminController(devices *services.DeviceService, tasks *services.TaskService, log zerolog.Logger) *AdminController {
	return &AdminController{devices: devices, tasks: tasks, log: log}
}

// ListDevices returns known devices, optionally filtered by user key. An
// unknown user yields an empty list rather than an error.
func (c *AdminController) ListDevices(w http.ResponseWriter, r *http.Request) {
	userKey := r.URL.Query().Get("user")
	if userKey != "" {
		user, err := c.devices.GetUser(userKey)
		if err != nil {
			c.storeFailure(w, err)
			return
		}
		if user == nil {
			writeJSON(w, http.StatusOK, []models.Device{})
			return
		}
	}
	devices, err := c.devices.ListDevices(userKey)
	if err != nil {
		c.storeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

// ListDeviceTasks returns recent tasks for one device, most-recent-first.
func (c *AdminController) ListDeviceTasks(w http.ResponseWriter, r *http.Request) {
	device, ok := c.resolveDevice(w, r)
	if !ok {
		return
	}
	limit := defaultTaskListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTaskListLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	tasks, err := c.tasks.ListRecent(device, limit)
	if err != nil {
		c.storeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CreateDeviceTask enqueues a new pending task for the device.
func (c *AdminController) CreateDeviceTask(w http.ResponseWriter, r *http.Request) {
	device, ok := c.resolveDevice(w, r)
	if !ok {
		return
	}
	user, err := c.devices.GetUser(device.UserKey)
	if err != nil {
		c.storeFailure(w, err)
		return
	}
	var req dto.TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "type is required")
		return
	}
	task, err := c.tasks.Enqueue(user, device, req.Type, req.Params, req.Priority)
	if err != nil {
		c.storeFailure(w, err)
		return
	}
	c.log.Info().Str("task", task.TaskUUID).Str("type", task.Type).
		Str("device", device.Identifier).Int("priority", task.Priority).Msg("enqueued task")
	writeJSON(w, http.StatusCreated, task)
}

func (c *AdminController) resolveDevice(w http.ResponseWriter, r *http.Request) (*models.Device, bool) {
	userKey := r.URL.Query().Get("user")
	if userKey == "" {
		writeError(w, http.StatusBadRequest, "user query parameter is required")
		return nil, false
	}
	user, err := c.devices.GetUser(userKey)
	if err != nil {
		c.storeFailure(w, err)
		return nil, false
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return nil, false
	}
	device, err := c.devices.Lookup(userKey, r.PathValue("device"))
	if err != nil {
		c.storeFailure(w, err)
		return nil, false
	}
	if device == nil {
		writeError(w, http.StatusNotFound, "device not found")
		return nil, false
	}
	return device, true
}

func (c *AdminController) storeFailure(w http.ResponseWriter, err error) {
	c.log.Error().Err(err).Msg("store failure")
	writeError(w, http.StatusInternalServerError, "internal error")
}
