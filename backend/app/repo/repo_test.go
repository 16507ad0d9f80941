package repo

import (
	"path/filepath"
	"testing"

	"maa-remote/backend/app/db"
	"maa-remote/backend/app/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Connect(db.Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.User{}, &models.Device{}, &models.Task{}, &models.TaskLog{}))
	return gdb
}

func seedOwner(t *testing.T, gdb *gorm.DB, userKey, deviceID string) (*models.User, *models.Device) {
	t.Helper()
	user := &models.User{UserKey: userKey}
	require.NoError(t, gdb.Create(user).Error)
	device := &models.Device{UserID: user.ID, UserKey: userKey, Identifier: deviceID, Status: models.DeviceOnline}
	require.NoError(t, gdb.Create(device).Error)
	return user, device
}

func seedTask(t *testing.T, gdb *gorm.DB, user *models.User, device *models.Device, uuid string, priority int) *models.Task {
	t.Helper()
	task := &models.Task{
		TaskUUID:         uuid,
		UserID:           user.ID,
		UserKey:          user.UserKey,
		DeviceID:         device.ID,
		DeviceIdentifier: device.Identifier,
		Type:             "LinkStart",
		Status:           models.StatusPending,
		Priority:         priority,
	}
	require.NoError(t, gdb.Create(task).Error)
	return task
}
