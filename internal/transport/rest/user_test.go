package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medbook/internal/domain"
	"medbook/internal/service"
)

type fakeUserService struct {
	service.UserService

	updated *domain.UpdateUserDTO
}

func (s *fakeUserService) Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error {
	s.updated = &dto
	return nil
}

func performUpdateUser(t *testing.T, users *fakeUserService, actorID int64, role domain.UserRole, targetID, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &Handler{
		services: &service.Services{User: users},
		logger:   zap.NewNop(),
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/users/"+targetID, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: targetID}}
	c.Set(userIDCtx, actorID)
	c.Set(userRoleCtx, role)

	h.updateUser(c)
	c.Writer.WriteHeaderNow()
	return w
}

// Деактивированная учетная запись не должна включать себя обратно:
// is_active из тела запроса игнорируется для всех, кроме администратора.
func TestUpdateUserIgnoresIsActiveForOwner(t *testing.T) {
	users := &fakeUserService{}

	w := performUpdateUser(t, users, 7, domain.UserRolePatient, "7",
		`{"first_name": "Иван", "is_active": true}`)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if users.updated == nil {
		t.Fatal("update not forwarded to service")
	}
	if users.updated.IsActive != nil {
		t.Error("is_active from non-admin request reached the service")
	}
	if users.updated.FirstName == nil || *users.updated.FirstName != "Иван" {
		t.Error("first_name lost while stripping is_active")
	}
}

func TestUpdateUserKeepsIsActiveForAdmin(t *testing.T) {
	users := &fakeUserService{}

	w := performUpdateUser(t, users, 1, domain.UserRoleAdmin, "7", `{"is_active": false}`)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if users.updated == nil || users.updated.IsActive == nil {
		t.Fatal("admin is_active update lost")
	}
	if *users.updated.IsActive {
		t.Error("is_active = true, want false")
	}
}
