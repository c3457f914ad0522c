package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

type testUserFinder struct {
	findFn func(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func (f *testUserFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if f.findFn != nil {
		return f.findFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func TestUserProfileReturnsRecord(t *testing.T) {
	userID := uuid.New()
	finder := &testUserFinder{
		findFn: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			if id != userID {
				t.Fatalf("unexpected user id %s", id)
			}
			return &models.User{
				ID:    userID,
				Name:  "Casey",
				Email: "casey@example.com",
				Role:  enums.RoleDonor,
			}, nil
		},
	}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/users/profile", nil), userID, enums.RoleDonor)
	resp := httptest.NewRecorder()
	UserProfile(finder, testLogger())(resp, req)

	expectStatus(t, resp, http.StatusOK)

	var envelope struct {
		Data struct {
			User struct {
				Email        string `json:"email"`
				PasswordHash string `json:"password_hash"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.User.Email != "casey@example.com" {
		t.Fatalf("unexpected email %s", envelope.Data.User.Email)
	}
	if envelope.Data.User.PasswordHash != "" {
		t.Fatal("password hash must not be serialized")
	}
}

func TestUserProfileMissingSubject(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	resp := httptest.NewRecorder()
	UserProfile(&testUserFinder{}, testLogger())(resp, req)
	expectStatus(t, resp, http.StatusUnauthorized)
}

func TestUserProfileDeletedSubject(t *testing.T) {
	req := asUser(httptest.NewRequest(http.MethodGet, "/api/users/profile", nil), uuid.New(), enums.RoleReceiver)
	resp := httptest.NewRecorder()
	UserProfile(&testUserFinder{}, testLogger())(resp, req)
	expectStatus(t, resp, http.StatusNotFound)
}
