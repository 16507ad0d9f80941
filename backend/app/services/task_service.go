package services

import (
	"encoding/json"
	"time"

	"maa-remote/backend/app/models"
	"maa-remote/backend/app/repo"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// TaskService owns the task lifecycle: enqueue, claim, and terminal report
// application validated against the status state machine.
type TaskService struct {
	tasks *repo.TaskRepository
	log   zerolog.Logger
}

func NewTaskService(tasks *repo.TaskRepository, log zerolog.Logger) *TaskService {
	return &TaskService{tasks: tasks, log: log}
}

// WithTx returns a copy of the service whose repository is bound to tx.
func (s *TaskService) WithTx(tx *gorm.DB) *TaskService {
	return &TaskService{tasks: s.tasks.WithTx(tx), log: s.log}
}

// Enqueue creates a new pending task for a device. Type and params are not
// interpreted here; only the agent's command builders give them meaning.
func (s *TaskService) Enqueue(user *models.User, device *models.Device, taskType string, params models.JSONMap, priority int) (*models.Task, error) {
	task := &models.Task{
		TaskUUID:         uuid.NewString(),
		UserID:           user.ID,
		UserKey:          user.UserKey,
		DeviceID:         device.ID,
		DeviceIdentifier: device.Identifier,
		Type:             taskType,
		Params:           params,
		Status:           models.StatusPending,
		Priority:         priority,
	}
	if err := s.tasks.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

// ClaimNext hands out the next pending task for a device, already
// transitioned to Running. Returns nil when the queue is empty.
func (s *TaskService) ClaimNext(userKey, deviceIdentifier string) (*models.Task, error) {
	return s.tasks.ClaimNext(userKey, deviceIdentifier)
}

// GetByUUID resolves a task by its external id. Returns nil when unknown.
func (s *TaskService) GetByUUID(taskUUID string) (*models.Task, error) {
	return s.tasks.FindByUUID(taskUUID)
}

// ResolveOwned resolves a task by its external id and verifies it belongs to
// the given (user, device). Returns ErrTaskNotFound for an unknown id and
// ErrOwnershipConflict when the task exists but the principal does not own it.
func (s *TaskService) ResolveOwned(userKey, deviceIdentifier, taskUUID string) (*models.Task, error) {
	task, err := s.tasks.FindByUUID(taskUUID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		s.log.Warn().Str("task", taskUUID).Str("device", deviceIdentifier).
			Msg("report for unknown task")
		return nil, ErrTaskNotFound
	}
	if task.UserKey != userKey || task.DeviceIdentifier != deviceIdentifier {
		s.log.Error().Str("task", taskUUID).
			Str("owner_user", task.UserKey).Str("owner_device", task.DeviceIdentifier).
			Str("got_user", userKey).Str("got_device", deviceIdentifier).
			Msg("task ownership mismatch")
		return nil, ErrOwnershipConflict
	}
	return task, nil
}

// ListRecent returns the device's tasks most-recent-first.
func (s *TaskService) ListRecent(device *models.Device, limit int) ([]models.Task, error) {
	return s.tasks.ListRecentByDevice(device.ID, limit)
}

// ApplyReport validates the reported status against the state machine and
// persists the transition. The log is stored as given (the caller truncates),
// finished_at is stamped, and non-empty result/stats payloads become
// structured log entries alongside the task.
//
// A report against a task already terminal with the same status is treated as
// a duplicate delivery and ignored; a different terminal status is a
// conflict. A report against a task still Pending (claim skipped) is accepted
// but logged as a protocol anomaly.
func (s *TaskService) ApplyReport(task *models.Task, status models.TaskStatus, logText, errorMessage string, result, stats models.JSONMap) error {
	if task.Status.Terminal() {
		if task.Status == status {
			s.log.Debug().Str("task", task.TaskUUID).Str("status", string(status)).
				Msg("duplicate report for finished task, ignoring")
			return nil
		}
		return ErrStatusConflict
	}
	if !status.Terminal() || !task.Status.CanTransition(status) {
		return ErrInvalidTransition
	}
	if task.Status == models.StatusPending {
		s.log.Warn().Str("task", task.TaskUUID).
			Msg("report for task never claimed, accepting transition")
	}

	now := time.Now().UTC()
	task.Status = status
	task.FinishedAt = &now
	if logText != "" {
		task.Log = logText
	}
	if errorMessage != "" {
		task.ErrorMessage = errorMessage
	}

	var entries []models.TaskLog
	if len(result) > 0 {
		entries = append(entries, models.TaskLog{Level: "DEBUG", Message: "result: " + marshalPayload(result)})
	}
	if len(stats) > 0 {
		entries = append(entries, models.TaskLog{Level: "DEBUG", Message: "stats: " + marshalPayload(stats)})
	}
	return s.tasks.ApplyTerminal(task, entries)
}

func marshalPayload(m models.JSONMap) string {
	b, err := json.Marshal(m)
	if err != nil {
		return "<unserializable>"
	}
	return string(b)
}

// TruncateTail bounds s to max characters, keeping the suffix. Failures
// explain themselves at the end of the output, so the tail is the part worth
// keeping.
func TruncateTail(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[len(r)-max:])
}
