package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "postureguard/internal/errors"
	"postureguard/internal/models"
	"postureguard/internal/services"
	"postureguard/internal/validator"
)

// --- mock services ---

type mockUserService struct {
	registerFn       func(name, email, password string, age *int, heightCm, weightKg *float64) (*models.User, error)
	attemptLoginFn   func(email, password string) (*models.User, error)
	getUserByIDFn    func(id string) (*models.User, error)
	updateProfileFn  func(userID string, update services.ProfileUpdate) (*models.User, error)
	changePasswordFn func(userID, currentPassword, newPassword string) error
	deleteUserFn     func(userID string) error
}

func (m *mockUserService) Register(name, email, password string, age *int, heightCm, weightKg *float64) (*models.User, error) {
	if m.registerFn != nil {
		return m.registerFn(name, email, password, age, heightCm, weightKg)
	}
	return &models.User{}, nil
}

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	return &models.User{}, nil
}

func (m *mockUserService) VerifyPassword(user *models.User, password string) bool { return true }

func (m *mockUserService) UpdateProfile(userID string, update services.ProfileUpdate) (*models.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(userID, update)
	}
	return &models.User{}, nil
}

func (m *mockUserService) ChangePassword(userID, currentPassword, newPassword string) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(userID, currentPassword, newPassword)
	}
	return nil
}

func (m *mockUserService) DeleteUser(userID string) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(userID)
	}
	return nil
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.GET("/auth/profile", injectUserID("user-1"), handler.GetProfile)
	r.PUT("/auth/profile", injectUserID("user-1"), handler.UpdateProfile)
	r.POST("/auth/change-password", injectUserID("user-1"), handler.ChangePassword)
	r.DELETE("/auth/account", injectUserID("user-1"), handler.DeleteAccount)
	return r
}

// --- tests ---

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns_201_on_success", func(t *testing.T) {
		userSvc := &mockUserService{
			registerFn: func(name, email, _ string, _ *int, _, _ *float64) (*models.User, error) {
				return &models.User{
					Base:  models.Base{ID: "user-1"},
					Name:  name,
					Email: email,
				}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, http.MethodPost, "/auth/register",
			`{"name":"Alice","email":"alice@example.com","password":"password123"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		body := parseJSON(t, rec)
		if body["token"] == nil || body["token"] == "" {
			t.Error("expected token in response")
		}
		user, _ := body["user"].(map[string]interface{})
		if user == nil || user["email"] != "alice@example.com" {
			t.Errorf("unexpected user object: %v", body["user"])
		}
		if _, leaked := user["password"]; leaked {
			t.Error("password must never appear in responses")
		}
	})

	t.Run("rejects_invalid_payload", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}))

		for _, payload := range []string{
			`{"email":"alice@example.com","password":"password123"}`, // missing name
			`{"name":"A","email":"not-an-email","password":"password123"}`,
			`{"name":"A","email":"a@b.com","password":"short"}`,
			`{"name":"A","email":"a@b.com","password":"password123","age":5}`,
		} {
			rec := doRequest(r, http.MethodPost, "/auth/register", payload)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400 for %s, got %d", payload, rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "VALIDATION_ERROR")
		}
	})

	t.Run("propagates_duplicate_email", func(t *testing.T) {
		userSvc := &mockUserService{
			registerFn: func(_, _, _ string, _ *int, _, _ *float64) (*models.User, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, http.MethodPost, "/auth/register",
			`{"name":"Alice","email":"alice@example.com","password":"password123"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_EMAIL")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns_token", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(email, password string) (*models.User, error) {
				return &models.User{Base: models.Base{ID: "user-1"}, Email: email}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, http.MethodPost, "/auth/login",
			`{"email":"alice@example.com","password":"password123"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := parseJSON(t, rec)
		if body["token"] == nil {
			t.Error("expected token in response")
		}
	})

	t.Run("propagates_credential_failure", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, http.MethodPost, "/auth/login",
			`{"email":"alice@example.com","password":"wrong"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})

	t.Run("propagates_lockout", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) {
				return nil, apperrors.ErrAccountLocked
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, http.MethodPost, "/auth/login",
			`{"email":"alice@example.com","password":"password123"}`)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_LOCKED")
	})
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		var gotCurrent, gotNew string
		userSvc := &mockUserService{
			changePasswordFn: func(_, currentPassword, newPassword string) error {
				gotCurrent, gotNew = currentPassword, newPassword
				return nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, http.MethodPost, "/auth/change-password",
			`{"currentPassword":"old-password","newPassword":"new-password-42"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotCurrent != "old-password" || gotNew != "new-password-42" {
			t.Error("expected camelCase password fields bound")
		}
	})

	t.Run("short_new_password", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}))

		rec := doRequest(r, http.MethodPost, "/auth/change-password",
			`{"currentPassword":"old-password","newPassword":"short"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_DeleteAccount(t *testing.T) {
	called := false
	userSvc := &mockUserService{
		deleteUserFn: func(userID string) error {
			called = userID == "user-1"
			return nil
		},
	}
	r := setupAuthRouter(NewAuthHandler(userSvc))

	rec := doRequest(r, http.MethodDelete, "/auth/account", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !called {
		t.Error("expected delete to target the authenticated user")
	}
}
