package service

import (
	"context"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/repository"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

// Event-scoped configuration keys gating the offline check-in features.
const (
	SettingPiIntegrationEnabled  = "PI_INTEGRATION_ENABLED"
	SettingOfflineCheckInEnabled = "OFFLINE_CHECKIN_ENABLED"
	SettingLabelPrintingEnabled  = "LABEL_PRINTING_ENABLED"
)

type settingsService struct {
	l        logger.Logger
	settings repository.SettingsRepository
}

func NewSettingsService(l logger.Logger, settings repository.SettingsRepository) SettingsService {
	return &settingsService{l: l, settings: settings}
}

func (s *settingsService) IsOfflineCheckInEnabled(ctx context.Context, eventID int64) (bool, error) {
	return s.allEnabled(ctx, eventID, SettingPiIntegrationEnabled, SettingOfflineCheckInEnabled)
}

func (s *settingsService) IsOfflineCheckInAndLabelPrintingEnabled(ctx context.Context, eventID int64) (bool, error) {
	return s.allEnabled(ctx, eventID, SettingPiIntegrationEnabled, SettingOfflineCheckInEnabled, SettingLabelPrintingEnabled)
}

func (s *settingsService) allEnabled(ctx context.Context, eventID int64, keys ...string) (bool, error) {
	for _, key := range keys {
		enabled, err := s.settings.GetBool(ctx, eventID, key)
		if err != nil {
			s.l.Errorf(ctx, "service.settingsService.allEnabled: %v", err)
			return false, err
		}
		if !enabled {
			return false, nil
		}
	}
	return true, nil
}
