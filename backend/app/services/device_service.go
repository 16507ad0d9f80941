package services

import (
	"time"

	"maa-remote/backend/app/models"
	"maa-remote/backend/app/repo"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// DeviceService is the device registry: user get-or-create, device
// heartbeat bookkeeping, and side-effect-free ownership lookups.
type DeviceService struct {
	users   *repo.UserRepository
	devices *repo.DeviceRepository
	log     zerolog.Logger
}

func NewDeviceService(users *repo.UserRepository, devices *repo.DeviceRepository, log zerolog.Logger) *DeviceService {
	return &DeviceService{users: users, devices: devices, log: log}
}

// WithTx returns a copy of the service whose repositories are bound to tx.
func (s *DeviceService) WithTx(tx *gorm.DB) *DeviceService {
	return &DeviceService{users: s.users.WithTx(tx), devices: s.devices.WithTx(tx), log: s.log}
}

// EnsureUser gets or creates the user for a key. Idempotent.
func (s *DeviceService) EnsureUser(userKey string) (*models.User, error) {
	user, err := s.users.FindByKey(userKey)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	user = &models.User{UserKey: userKey}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	s.log.Info().Str("user", userKey).Msg("created user on first contact")
	return user, nil
}

// RegisterOrTouch gets or creates the device and refreshes its liveness:
// status goes online and last_seen_at is stamped on every call. The agent
// version and display name are only overwritten when a non-empty value is
// supplied, so a bare heartbeat never clears known metadata.
func (s *DeviceService) RegisterOrTouch(user *models.User, identifier, displayName, agentVersion string) (*models.Device, error) {
	device, err := s.devices.Find(user.UserKey, identifier)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if device == nil {
		device = &models.Device{
			UserID:       user.ID,
			UserKey:      user.UserKey,
			Identifier:   identifier,
			DisplayName:  displayName,
			Status:       models.DeviceOnline,
			AgentVersion: agentVersion,
			LastSeenAt:   &now,
		}
		if err := s.devices.Create(device); err != nil {
			return nil, err
		}
		s.log.Info().Str("user", user.UserKey).Str("device", identifier).Msg("registered device")
		return device, nil
	}

	device.Status = models.DeviceOnline
	device.LastSeenAt = &now
	if agentVersion != "" {
		device.AgentVersion = agentVersion
	}
	if displayName != "" {
		device.DisplayName = displayName
	}
	if err := s.devices.Save(device); err != nil {
		return nil, err
	}
	return device, nil
}

// Lookup resolves a device without touching liveness state. Returns nil when
// the device is unknown.
func (s *DeviceService) Lookup(userKey, identifier string) (*models.Device, error) {
	return s.devices.Find(userKey, identifier)
}

// GetUser resolves a user without creating it. Returns nil when unknown.
func (s *DeviceService) GetUser(userKey string) (*models.User, error) {
	return s.users.FindByKey(userKey)
}

// ListDevices returns known devices, optionally filtered by user key.
func (s *DeviceService) ListDevices(userKey string) ([]models.Device, error) {
	return s.devices.List(userKey)
}
