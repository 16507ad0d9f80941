package repo

import (
	"fmt"
	"testing"

	"maa-remote/backend/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimNextEmptyQueue(t *testing.T) {
	gdb := newTestDB(t)
	seedOwner(t, gdb, "alice", "dev-1")
	tasks := NewTaskRepository(gdb)

	task, err := tasks.ClaimNext("alice", "dev-1")
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestClaimNextTransitionsToRunning(t *testing.T) {
	gdb := newTestDB(t)
	user, device := seedOwner(t, gdb, "alice", "dev-1")
	tasks := NewTaskRepository(gdb)
	seedTask(t, gdb, user, device, "t-1", 0)

	task, err := tasks.ClaimNext("alice", "dev-1")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "t-1", task.TaskUUID)
	assert.Equal(t, models.StatusRunning, task.Status)
	require.NotNil(t, task.StartedAt)

	// persisted, not just returned
	stored, err := tasks.FindByUUID("t-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRunning, stored.Status)
	require.NotNil(t, stored.StartedAt)
}

func TestClaimNextOrderPriorityThenCreation(t *testing.T) {
	gdb := newTestDB(t)
	user, device := seedOwner(t, gdb, "alice", "dev-1")
	tasks := NewTaskRepository(gdb)
	seedTask(t, gdb, user, device, "low-old", 0)
	seedTask(t, gdb, user, device, "high", 5)
	seedTask(t, gdb, user, device, "low-new", 0)

	var order []string
	for {
		task, err := tasks.ClaimNext("alice", "dev-1")
		require.NoError(t, err)
		if task == nil {
			break
		}
		order = append(order, task.TaskUUID)
	}
	assert.Equal(t, []string{"high", "low-old", "low-new"}, order)
}

func TestClaimNextNeverHandsOutSameTaskTwice(t *testing.T) {
	gdb := newTestDB(t)
	user, device := seedOwner(t, gdb, "alice", "dev-1")
	tasks := NewTaskRepository(gdb)
	for i := 0; i < 5; i++ {
		seedTask(t, gdb, user, device, fmt.Sprintf("t-%d", i), 0)
	}

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		task, err := tasks.ClaimNext("alice", "dev-1")
		require.NoError(t, err)
		if task == nil {
			continue
		}
		assert.False(t, seen[task.TaskUUID], "task %s claimed twice", task.TaskUUID)
		seen[task.TaskUUID] = true
	}
	assert.Len(t, seen, 5)
}

func TestClaimNextScopedToDevice(t *testing.T) {
	gdb := newTestDB(t)
	user, device := seedOwner(t, gdb, "alice", "dev-1")
	require.NoError(t, gdb.Create(&models.Device{
		UserID: user.ID, UserKey: "alice", Identifier: "dev-2", Status: models.DeviceOnline,
	}).Error)
	tasks := NewTaskRepository(gdb)
	seedTask(t, gdb, user, device, "for-dev-1", 0)

	task, err := tasks.ClaimNext("alice", "dev-2")
	require.NoError(t, err)
	assert.Nil(t, task)

	task, err = tasks.ClaimNext("alice", "dev-1")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "for-dev-1", task.TaskUUID)
}

func TestClaimNextIgnoresRunningTasks(t *testing.T) {
	gdb := newTestDB(t)
	user, device := seedOwner(t, gdb, "alice", "dev-1")
	tasks := NewTaskRepository(gdb)
	first := seedTask(t, gdb, user, device, "snatched", 5)
	seedTask(t, gdb, user, device, "next", 0)

	// A concurrent poll already claimed the head candidate.
	require.NoError(t, gdb.Model(&models.Task{}).
		Where("id = ?", first.ID).
		Update("status", models.StatusRunning).Error)

	task, err := tasks.ClaimNext("alice", "dev-1")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "next", task.TaskUUID)
}

func TestPendingBatchDoesNotTransition(t *testing.T) {
	gdb := newTestDB(t)
	user, device := seedOwner(t, gdb, "alice", "dev-1")
	tasks := NewTaskRepository(gdb)
	seedTask(t, gdb, user, device, "a", 1)
	seedTask(t, gdb, user, device, "b", 2)
	seedTask(t, gdb, user, device, "c", 0)

	batch, err := tasks.PendingBatch("alice", "dev-1", 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "b", batch[0].TaskUUID)
	assert.Equal(t, "a", batch[1].TaskUUID)
	for _, task := range batch {
		assert.Equal(t, models.StatusPending, task.Status)
	}
}

func TestListRecentByDevice(t *testing.T) {
	gdb := newTestDB(t)
	user, device := seedOwner(t, gdb, "alice", "dev-1")
	tasks := NewTaskRepository(gdb)
	for i := 0; i < 4; i++ {
		seedTask(t, gdb, user, device, fmt.Sprintf("t-%d", i), 0)
	}

	recent, err := tasks.ListRecentByDevice(device.ID, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	// Creation timestamps may collide within the test; the id tie-break keeps
	// the order deterministic, newest insert first.
	assert.Equal(t, "t-3", recent[0].TaskUUID)
	assert.Equal(t, "t-2", recent[1].TaskUUID)
	assert.Equal(t, "t-1", recent[2].TaskUUID)
}

func TestMarkRunningStampsStartedAtOnce(t *testing.T) {
	gdb := newTestDB(t)
	user, device := seedOwner(t, gdb, "alice", "dev-1")
	tasks := NewTaskRepository(gdb)
	task := seedTask(t, gdb, user, device, "t-1", 0)

	require.NoError(t, tasks.MarkRunning(task))
	require.NotNil(t, task.StartedAt)
	first := *task.StartedAt

	// a second call keeps the original start time
	require.NoError(t, tasks.MarkRunning(task))
	assert.Equal(t, first, *task.StartedAt)

	stored, err := tasks.FindByUUID("t-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRunning, stored.Status)
	require.NotNil(t, stored.StartedAt)
}

func TestAppendLogAttachesEntry(t *testing.T) {
	gdb := newTestDB(t)
	user, device := seedOwner(t, gdb, "alice", "dev-1")
	tasks := NewTaskRepository(gdb)
	task := seedTask(t, gdb, user, device, "t-1", 0)

	require.NoError(t, tasks.AppendLog(task.ID, "INFO", "started"))
	require.NoError(t, tasks.AppendLog(task.ID, "ERROR", "boom"))

	var logs []models.TaskLog
	require.NoError(t, gdb.Where("task_id = ?", task.ID).Order("id ASC").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, "INFO", logs[0].Level)
	assert.Equal(t, "started", logs[0].Message)
	assert.Equal(t, "ERROR", logs[1].Level)
	assert.Equal(t, "boom", logs[1].Message)
}

func TestApplyTerminalPersistsTaskAndEntries(t *testing.T) {
	gdb := newTestDB(t)
	user, device := seedOwner(t, gdb, "alice", "dev-1")
	tasks := NewTaskRepository(gdb)
	task := seedTask(t, gdb, user, device, "t-1", 0)

	task.Status = models.StatusSucceeded
	task.Log = "all good"
	entries := []models.TaskLog{
		{Level: "DEBUG", Message: "result: {}"},
		{Level: "DEBUG", Message: "stats: {}"},
	}
	require.NoError(t, tasks.ApplyTerminal(task, entries))

	stored, err := tasks.FindByUUID("t-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSucceeded, stored.Status)
	assert.Equal(t, "all good", stored.Log)

	var logs []models.TaskLog
	require.NoError(t, gdb.Where("task_id = ?", task.ID).Order("id ASC").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, "result: {}", logs[0].Message)
	assert.Equal(t, "stats: {}", logs[1].Message)
}
