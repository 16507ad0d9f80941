package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DeviceIdentity persists the generated device id so restarts keep the same
// identity and the server's device record.
type DeviceIdentity struct {
	ID    uint   `gorm:"primaryKey"`
	Value string `gorm:"size:64;not null"`
}

// Load returns the device identifier to use: the configured one when set,
// otherwise a generated id stored in the agent's local database.
func Load(dbPath, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create agent db dir: %w", err)
		}
	}
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return "", fmt.Errorf("open agent db: %w", err)
	}
	if err := gdb.AutoMigrate(&DeviceIdentity{}); err != nil {
		return "", fmt.Errorf("migrate agent db: %w", err)
	}

	var ident DeviceIdentity
	err = gdb.First(&ident).Error
	if err == nil {
		return ident.Value, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	ident.Value = strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := gdb.Create(&ident).Error; err != nil {
		return "", err
	}
	return ident.Value, nil
}
