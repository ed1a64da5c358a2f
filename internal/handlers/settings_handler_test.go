package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"postureguard/internal/models"
	"postureguard/internal/services"
)

type mockSettingsService struct {
	getOrCreateFn          func(userID string) (*models.UserSettings, error)
	updateFn               func(userID string, update services.SettingsUpdate) (*models.UserSettings, error)
	replaceNotificationsFn func(userID string, n models.NotificationSettings) (*models.UserSettings, error)
	replaceMonitoringFn    func(userID string, m models.MonitoringSettings) (*models.UserSettings, error)
	replaceGoalsFn         func(userID string, g models.GoalSettings) (*models.UserSettings, error)
	resetFn                func(userID string) (*models.UserSettings, error)
	exportFn               func(userID string) (*services.SettingsExport, error)
}

func (m *mockSettingsService) GetOrCreate(userID string) (*models.UserSettings, error) {
	if m.getOrCreateFn != nil {
		return m.getOrCreateFn(userID)
	}
	return models.DefaultSettings(userID), nil
}

func (m *mockSettingsService) Update(userID string, update services.SettingsUpdate) (*models.UserSettings, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, update)
	}
	return models.DefaultSettings(userID), nil
}

func (m *mockSettingsService) ReplaceNotifications(userID string, n models.NotificationSettings) (*models.UserSettings, error) {
	if m.replaceNotificationsFn != nil {
		return m.replaceNotificationsFn(userID, n)
	}
	return models.DefaultSettings(userID), nil
}

func (m *mockSettingsService) ReplaceMonitoring(userID string, mo models.MonitoringSettings) (*models.UserSettings, error) {
	if m.replaceMonitoringFn != nil {
		return m.replaceMonitoringFn(userID, mo)
	}
	return models.DefaultSettings(userID), nil
}

func (m *mockSettingsService) ReplaceGoals(userID string, g models.GoalSettings) (*models.UserSettings, error) {
	if m.replaceGoalsFn != nil {
		return m.replaceGoalsFn(userID, g)
	}
	return models.DefaultSettings(userID), nil
}

func (m *mockSettingsService) Reset(userID string) (*models.UserSettings, error) {
	if m.resetFn != nil {
		return m.resetFn(userID)
	}
	return models.DefaultSettings(userID), nil
}

func (m *mockSettingsService) Export(userID string) (*services.SettingsExport, error) {
	if m.exportFn != nil {
		return m.exportFn(userID)
	}
	return &services.SettingsExport{Settings: models.DefaultSettings(userID)}, nil
}

func setupSettingsRouter(handler *SettingsHandler) *gin.Engine {
	r := gin.New()
	r.Use(injectUserID("user-1"))
	r.GET("/settings", handler.Get)
	r.PUT("/settings", handler.Update)
	r.PUT("/settings/notifications", handler.UpdateNotifications)
	r.PUT("/settings/monitoring", handler.UpdateMonitoring)
	r.PUT("/settings/goals", handler.UpdateGoals)
	r.DELETE("/settings/reset", handler.Reset)
	r.GET("/settings/export", handler.Export)
	return r
}

func TestSettingsHandler_Get(t *testing.T) {
	r := setupSettingsRouter(NewSettingsHandler(&mockSettingsService{}))

	rec := doRequest(r, http.MethodGet, "/settings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := parseJSON(t, rec)
	settings, _ := body["settings"].(map[string]interface{})
	if settings == nil {
		t.Fatalf("expected settings object, got %v", body)
	}
	notifications, _ := settings["notifications"].(map[string]interface{})
	if notifications == nil || notifications["reminderInterval"] != float64(30) {
		t.Errorf("expected default notifications in response, got %v", settings["notifications"])
	}
}

func TestSettingsHandler_Update(t *testing.T) {
	t.Run("passes_submitted_bundles", func(t *testing.T) {
		var gotUpdate services.SettingsUpdate
		svc := &mockSettingsService{
			updateFn: func(userID string, update services.SettingsUpdate) (*models.UserSettings, error) {
				gotUpdate = update
				return models.DefaultSettings(userID), nil
			},
		}
		r := setupSettingsRouter(NewSettingsHandler(svc))

		rec := doRequest(r, http.MethodPut, "/settings",
			`{"goals":{"dailyScoreTarget":90},"display":{"theme":"dark","language":"en"}}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotUpdate.Goals == nil || gotUpdate.Goals.DailyScoreTarget != 90 {
			t.Error("expected goals bundle bound")
		}
		if gotUpdate.Display == nil || gotUpdate.Display.Theme != "dark" {
			t.Error("expected display bundle bound")
		}
		if gotUpdate.Notifications != nil || gotUpdate.Monitoring != nil {
			t.Error("omitted bundles must stay nil")
		}
	})

	t.Run("rejects_unknown_theme", func(t *testing.T) {
		r := setupSettingsRouter(NewSettingsHandler(&mockSettingsService{}))

		rec := doRequest(r, http.MethodPut, "/settings", `{"display":{"theme":"neon"}}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects_out_of_range_goal", func(t *testing.T) {
		r := setupSettingsRouter(NewSettingsHandler(&mockSettingsService{}))

		rec := doRequest(r, http.MethodPut, "/settings", `{"goals":{"dailyScoreTarget":40}}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestSettingsHandler_UpdateNotifications(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		var got models.NotificationSettings
		svc := &mockSettingsService{
			replaceNotificationsFn: func(userID string, n models.NotificationSettings) (*models.UserSettings, error) {
				got = n
				return models.DefaultSettings(userID), nil
			},
		}
		r := setupSettingsRouter(NewSettingsHandler(svc))

		rec := doRequest(r, http.MethodPut, "/settings/notifications",
			`{"enabled":true,"reminderInterval":45,"quietHours":{"enabled":true,"start":"21:30","end":"07:15"}}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.ReminderInterval != 45 || got.QuietHours.Start != "21:30" {
			t.Errorf("expected bundle bound, got %+v", got)
		}
	})

	t.Run("rejects_bad_clock_time", func(t *testing.T) {
		r := setupSettingsRouter(NewSettingsHandler(&mockSettingsService{}))

		rec := doRequest(r, http.MethodPut, "/settings/notifications",
			`{"enabled":true,"reminderInterval":45,"quietHours":{"enabled":true,"start":"25:00","end":"07:00"}}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid clock time, got %d", rec.Code)
		}
	})

	t.Run("rejects_interval_out_of_range", func(t *testing.T) {
		r := setupSettingsRouter(NewSettingsHandler(&mockSettingsService{}))

		rec := doRequest(r, http.MethodPut, "/settings/notifications",
			`{"enabled":true,"reminderInterval":3,"quietHours":{"start":"22:00","end":"07:00"}}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for interval below minimum, got %d", rec.Code)
		}
	})
}

func TestSettingsHandler_UpdateMonitoring(t *testing.T) {
	t.Run("rejects_unknown_sensitivity", func(t *testing.T) {
		r := setupSettingsRouter(NewSettingsHandler(&mockSettingsService{}))

		rec := doRequest(r, http.MethodPut, "/settings/monitoring",
			`{"sensitivity":"extreme","workingHours":{"start":"09:00","end":"17:00"}}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown sensitivity, got %d", rec.Code)
		}
	})

	t.Run("rejects_unknown_weekday", func(t *testing.T) {
		r := setupSettingsRouter(NewSettingsHandler(&mockSettingsService{}))

		rec := doRequest(r, http.MethodPut, "/settings/monitoring",
			`{"sensitivity":"high","workingHours":{"start":"09:00","end":"17:00","days":["funday"]}}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown weekday, got %d", rec.Code)
		}
	})
}

func TestSettingsHandler_Reset(t *testing.T) {
	called := false
	svc := &mockSettingsService{
		resetFn: func(userID string) (*models.UserSettings, error) {
			called = true
			return models.DefaultSettings(userID), nil
		},
	}
	r := setupSettingsRouter(NewSettingsHandler(svc))

	rec := doRequest(r, http.MethodDelete, "/settings/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !called {
		t.Error("expected reset to be invoked")
	}
}

func TestSettingsHandler_Export(t *testing.T) {
	r := setupSettingsRouter(NewSettingsHandler(&mockSettingsService{}))

	rec := doRequest(r, http.MethodGet, "/settings/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := parseJSON(t, rec)
	if body["settings"] == nil {
		t.Errorf("expected settings in export, got %v", body)
	}
}
