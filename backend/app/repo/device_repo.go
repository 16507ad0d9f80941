package repo

import (
	"errors"

	"maa-remote/backend/app/models"

	"gorm.io/gorm"
)

type DeviceRepository struct{ db *gorm.DB }

func NewDeviceRepository(db *gorm.DB) *DeviceRepository { return &DeviceRepository{db: db} }

// WithTx returns a copy of the repository bound to tx.
func (r *DeviceRepository) WithTx(tx *gorm.DB) *DeviceRepository { return &DeviceRepository{db: tx} }

func (r *DeviceRepository) Create(d *models.Device) error { return r.db.Create(d).Error }

func (r *DeviceRepository) Save(d *models.Device) error { return r.db.Save(d).Error }

// Find returns nil without error when no device matches the composite key.
func (r *DeviceRepository) Find(userKey, identifier string) (*models.Device, error) {
	var d models.Device
	err := r.db.Where("user_key = ? AND identifier = ?", userKey, identifier).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// List returns devices newest-first, optionally filtered by user key.
func (r *DeviceRepository) List(userKey string) ([]models.Device, error) {
	q := r.db.Order("created_at DESC")
	if userKey != "" {
		q = q.Where("user_key = ?", userKey)
	}
	var devices []models.Device
	if err := q.Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}
