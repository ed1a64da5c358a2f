package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "postureguard/internal/errors"
	"postureguard/internal/models"
)

// settingsService handles per-user preference documents.
type settingsService struct {
	db *gorm.DB
}

// NewSettingsService creates a new SettingsServicer.
func NewSettingsService(db *gorm.DB) SettingsServicer {
	return &settingsService{db: db}
}

// GetOrCreate returns the user's settings, lazily creating the default
// bundle on first access. Always returns a complete settings document.
func (s *settingsService) GetOrCreate(userID string) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := s.db.Where("user_id = ?", userID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	defaults := models.DefaultSettings(userID)
	if err := s.db.Create(defaults).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return defaults, nil
}

// Update applies a whole-document update as a shallow per-top-level-key
// merge: each submitted bundle replaces its stored counterpart wholesale,
// omitted bundles stay as stored.
func (s *settingsService) Update(userID string, update SettingsUpdate) (*models.UserSettings, error) {
	settings, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if update.Notifications != nil {
		settings.Notifications = *update.Notifications
	}
	if update.Monitoring != nil {
		settings.Monitoring = *update.Monitoring
	}
	if update.Privacy != nil {
		settings.Privacy = *update.Privacy
	}
	if update.Display != nil {
		settings.Display = *update.Display
	}
	if update.Goals != nil {
		settings.Goals = *update.Goals
	}
	if update.Accessibility != nil {
		settings.Accessibility = *update.Accessibility
	}
	if update.Integrations != nil {
		settings.Integrations = *update.Integrations
	}
	if update.Data != nil {
		settings.Data = *update.Data
	}

	return s.save(settings)
}

// ReplaceNotifications replaces the notifications bundle verbatim.
func (s *settingsService) ReplaceNotifications(userID string, n models.NotificationSettings) (*models.UserSettings, error) {
	settings, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	settings.Notifications = n
	return s.save(settings)
}

// ReplaceMonitoring replaces the monitoring bundle verbatim.
func (s *settingsService) ReplaceMonitoring(userID string, m models.MonitoringSettings) (*models.UserSettings, error) {
	settings, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	settings.Monitoring = m
	return s.save(settings)
}

// ReplaceGoals replaces the goals bundle verbatim.
func (s *settingsService) ReplaceGoals(userID string, g models.GoalSettings) (*models.UserSettings, error) {
	settings, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	settings.Goals = g
	return s.save(settings)
}

// Reset restores the default bundle, keeping the same settings row.
func (s *settingsService) Reset(userID string) (*models.UserSettings, error) {
	settings, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	defaults := models.DefaultSettings(userID)
	defaults.Base = settings.Base
	if err := s.db.Save(defaults).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return defaults, nil
}

// Export returns the full settings document plus a profile snapshot.
func (s *settingsService) Export(userID string) (*SettingsExport, error) {
	settings, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &SettingsExport{
		ExportedAt: time.Now(),
		User:       &user,
		Settings:   settings,
	}, nil
}

// save validates cross-field invariants and persists the document.
func (s *settingsService) save(settings *models.UserSettings) (*models.UserSettings, error) {
	if err := settings.Validate(); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	if err := s.db.Save(settings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return settings, nil
}
