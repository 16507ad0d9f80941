package repo

import (
	"errors"
	"time"

	"maa-remote/backend/app/models"

	"gorm.io/gorm"
)

// claimAttempts bounds the retry loop when a candidate row is snatched by a
// concurrent poll between select and update.
const claimAttempts = 3

type TaskRepository struct{ db *gorm.DB }

func NewTaskRepository(db *gorm.DB) *TaskRepository { return &TaskRepository{db: db} }

// WithTx returns a copy of the repository bound to tx.
func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository { return &TaskRepository{db: tx} }

func (r *TaskRepository) Create(t *models.Task) error { return r.db.Create(t).Error }

// FindByUUID returns nil without error when no task matches.
func (r *TaskRepository) FindByUUID(taskUUID string) (*models.Task, error) {
	var t models.Task
	if err := r.db.Where("task_uuid = ?", taskUUID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// ClaimNext atomically hands out the single next pending task for a device:
// highest priority first, oldest first among equals, row id as the final
// deterministic tie-break. The Pending->Running transition is a
// compare-and-swap on status, so no two calls can ever both claim the same
// row regardless of interleaving; losing a race moves on to the next
// candidate. Returns nil when no pending task exists.
func (r *TaskRepository) ClaimNext(userKey, deviceIdentifier string) (*models.Task, error) {
	for attempt := 0; attempt < claimAttempts; attempt++ {
		var t models.Task
		err := r.db.
			Where("user_key = ? AND device_identifier = ? AND status = ?",
				userKey, deviceIdentifier, models.StatusPending).
			Order("priority DESC, created_at ASC, id ASC").
			First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		res := r.db.Model(&models.Task{}).
			Where("id = ? AND status = ?", t.ID, models.StatusPending).
			Updates(map[string]any{"status": models.StatusRunning, "started_at": now})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			t.Status = models.StatusRunning
			t.StartedAt = &now
			return &t, nil
		}
		// Lost the race for this row; the next iteration picks a fresh candidate.
	}
	return nil, nil
}

// PendingBatch returns up to limit pending tasks in claim order without
// transitioning them. Unused by the poll path, which deliberately hands out
// one task at a time.
func (r *TaskRepository) PendingBatch(userKey, deviceIdentifier string, limit int) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("user_key = ? AND device_identifier = ? AND status = ?",
			userKey, deviceIdentifier, models.StatusPending).
		Order("priority DESC, created_at ASC, id ASC").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListRecentByDevice returns the device's tasks most-recent-first.
func (r *TaskRepository) ListRecentByDevice(deviceID uint, limit int) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("device_id = ?", deviceID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// MarkRunning stamps started_at if the task has not started yet.
func (r *TaskRepository) MarkRunning(t *models.Task) error {
	t.Status = models.StatusRunning
	if t.StartedAt == nil {
		now := time.Now().UTC()
		t.StartedAt = &now
	}
	return r.db.Save(t).Error
}

// ApplyTerminal persists a terminal transition together with its structured
// log entries as one transaction, so a report is never half-committed.
func (r *TaskRepository) ApplyTerminal(t *models.Task, entries []models.TaskLog) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(t).Error; err != nil {
			return err
		}
		txRepo := &TaskRepository{db: tx}
		for _, e := range entries {
			if err := txRepo.AppendLog(t.ID, e.Level, e.Message); err != nil {
				return err
			}
		}
		return nil
	})
}

// AppendLog attaches a structured log entry to a task.
func (r *TaskRepository) AppendLog(taskID uint, level, message string) error {
	return r.db.Create(&models.TaskLog{TaskID: taskID, Level: level, Message: message}).Error
}
