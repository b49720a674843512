package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/pagemark/readsync/domain"
)

// DeviceService owns the device-to-user bindings.
type DeviceService struct {
	repo domain.DeviceRepository
}

func NewDeviceService(repo domain.DeviceRepository) *DeviceService {
	return &DeviceService{repo: repo}
}

// Bind attaches the device to the user, taking it over from a previous owner
// if it was bound elsewhere. Last writer wins; the previous owner is not
// notified.
func (d *DeviceService) Bind(ctx context.Context, deviceID, userID string) (*domain.Device, error) {
	existing, err := d.repo.GetDeviceByDeviceID(ctx, deviceID)
	if err == nil && existing.UserID != userID {
		log.Info().
			Str("device_id", deviceID).
			Str("previous_user_id", existing.UserID).
			Str("user_id", userID).
			Msg("device binding reassigned")
	}

	return d.repo.BindDevice(ctx, deviceID, userID)
}

// Touch records protocol activity on the device.
func (d *DeviceService) Touch(ctx context.Context, deviceID string) error {
	return d.repo.TouchDevice(ctx, deviceID)
}
