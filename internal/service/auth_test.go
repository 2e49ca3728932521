package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"medbook/config"
	"medbook/internal/domain"
	"medbook/internal/repository"
	"medbook/pkg/auth"
)

type authUserRepo struct {
	repository.UserRepository

	usersByEmail map[string]*domain.User
	usersByPhone map[string]*domain.User
	usersByID    map[int64]*domain.User

	nextID          int64
	activationToken string
	tokenUserID     int64
}

func newAuthUserRepo() *authUserRepo {
	return &authUserRepo{
		usersByEmail: make(map[string]*domain.User),
		usersByPhone: make(map[string]*domain.User),
		usersByID:    make(map[int64]*domain.User),
		nextID:       1,
	}
}

func (r *authUserRepo) add(user *domain.User) {
	r.usersByID[user.ID] = user
	r.usersByEmail[user.Email] = user
	r.usersByPhone[user.Phone] = user
}

func (r *authUserRepo) Create(ctx context.Context, dto domain.CreateUserDTO) (int64, error) {
	id := r.nextID
	r.nextID++
	r.add(&domain.User{
		ID:           id,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Email:        dto.Email,
		Phone:        dto.Phone,
		PasswordHash: dto.Password,
		Role:         dto.Role,
	})
	return id, nil
}

func (r *authUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, ok := r.usersByID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (r *authUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := r.usersByEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (r *authUserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	user, ok := r.usersByPhone[phone]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (r *authUserRepo) SetActivationToken(ctx context.Context, id int64, token string) error {
	r.activationToken = token
	r.tokenUserID = id
	return nil
}

func (r *authUserRepo) ActivateByToken(ctx context.Context, token string) (int64, error) {
	if token == "" || token != r.activationToken {
		return 0, domain.ErrNotFound
	}
	if user, ok := r.usersByID[r.tokenUserID]; ok {
		user.IsActive = true
	}
	r.activationToken = ""
	return r.tokenUserID, nil
}

type fakeAuthRepo struct {
	repository.AuthRepository

	sessions map[string]*domain.Session
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{sessions: make(map[string]*domain.Session)}
}

func (r *fakeAuthRepo) CreateSession(ctx context.Context, session domain.Session) error {
	r.sessions[session.RefreshToken] = &session
	return nil
}

func (r *fakeAuthRepo) GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	session, ok := r.sessions[refreshToken]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

func (r *fakeAuthRepo) DeleteSession(ctx context.Context, id string) error {
	for token, session := range r.sessions {
		if session.ID == id {
			delete(r.sessions, token)
		}
	}
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SigningKey:      "test-signing-key",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func newAuthFixture() (*AuthServiceImpl, *authUserRepo, *fakeAuthRepo, *fakeNotifier) {
	users := newAuthUserRepo()
	sessions := newFakeAuthRepo()
	notifier := &fakeNotifier{}
	svc := NewAuthService(sessions, users, notifier, testJWTConfig(), zap.NewNop())
	return svc, users, sessions, notifier
}

func validRegisterRequest() domain.RegisterRequest {
	return domain.RegisterRequest{
		FirstName: "Иван",
		LastName:  "Петров",
		Email:     "ivan@example.com",
		Phone:     "+79161234567",
		Password:  "secret123",
		Role:      domain.UserRolePatient,
	}
}

func TestRegisterAndActivate(t *testing.T) {
	svc, users, _, _ := newAuthFixture()

	userID, err := svc.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	created, err := users.GetByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if created.IsActive {
		t.Error("new user is active before activation")
	}
	if users.activationToken == "" {
		t.Fatal("activation token not stored")
	}

	if err := svc.Activate(context.Background(), users.activationToken); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if !created.IsActive {
		t.Error("user not active after activation")
	}

	// Повторное использование токена не проходит.
	if err := svc.Activate(context.Background(), "used-token"); err == nil {
		t.Error("Activate() with stale token expected error")
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.RegisterRequest)
	}{
		{"bad email", func(r *domain.RegisterRequest) { r.Email = "not-an-email" }},
		{"bad phone", func(r *domain.RegisterRequest) { r.Phone = "123" }},
		{"short password", func(r *domain.RegisterRequest) { r.Password = "abc" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := newAuthFixture()
			req := validRegisterRequest()
			tt.mutate(&req)
			if _, err := svc.Register(context.Background(), req); err == nil {
				t.Error("Register() expected error")
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, users, _, _ := newAuthFixture()
	users.add(&domain.User{ID: 50, Email: "ivan@example.com", Phone: "+79160000000"})

	if _, err := svc.Register(context.Background(), validRegisterRequest()); err == nil {
		t.Error("Register() with taken email expected error")
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, users, _, _ := newAuthFixture()

	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	users.add(&domain.User{
		ID: 1, Email: "ivan@example.com", Phone: "+79161234567",
		PasswordHash: hash, Role: domain.UserRolePatient,
	})

	_, err = svc.Login(context.Background(), domain.LoginRequest{
		Login:    "ivan@example.com",
		Password: "secret123",
	}, "test-agent", "127.0.0.1")
	if !errors.Is(err, domain.ErrAccountNotActive) {
		t.Fatalf("Login() error = %v, want ErrAccountNotActive", err)
	}
}

func TestLoginAndParseToken(t *testing.T) {
	svc, users, sessions, _ := newAuthFixture()

	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	users.add(&domain.User{
		ID: 7, Email: "ivan@example.com", Phone: "+79161234567",
		PasswordHash: hash, Role: domain.UserRoleDoctor, IsActive: true,
	})

	tokens, err := svc.Login(context.Background(), domain.LoginRequest{
		Login:    "ivan@example.com",
		Password: "secret123",
	}, "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if len(sessions.sessions) != 1 {
		t.Errorf("sessions stored = %d, want 1", len(sessions.sessions))
	}

	userID, role, err := svc.ParseToken(context.Background(), tokens.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if userID != 7 || role != domain.UserRoleDoctor {
		t.Errorf("ParseToken() = (%d, %s), want (7, doctor)", userID, role)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, users, _, _ := newAuthFixture()

	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	users.add(&domain.User{
		ID: 1, Email: "ivan@example.com", Phone: "+79161234567",
		PasswordHash: hash, IsActive: true,
	})

	if _, err := svc.Login(context.Background(), domain.LoginRequest{
		Login:    "ivan@example.com",
		Password: "wrongpass",
	}, "test-agent", "127.0.0.1"); err == nil {
		t.Fatal("Login() with wrong password expected error")
	}
}

func TestParseTokenWrongKey(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	otherCfg := testJWTConfig()
	otherCfg.SigningKey = "another-key"
	other := NewAuthService(newFakeAuthRepo(), newAuthUserRepo(), &fakeNotifier{}, otherCfg, zap.NewNop())

	tokens, err := other.generateTokens(1, domain.UserRolePatient)
	if err != nil {
		t.Fatalf("generateTokens() error = %v", err)
	}

	if _, _, err := svc.ParseToken(context.Background(), tokens.AccessToken); err == nil {
		t.Fatal("ParseToken() with foreign signature expected error")
	}
}

func TestLogoutUnknownSession(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	if err := svc.Logout(context.Background(), "unknown-token"); err != nil {
		t.Fatalf("Logout() error = %v, want nil", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, users, sessions, _ := newAuthFixture()

	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	users.add(&domain.User{
		ID: 1, Email: "ivan@example.com", Phone: "+79161234567",
		PasswordHash: hash, Role: domain.UserRolePatient, IsActive: true,
	})

	tokens, err := svc.Login(context.Background(), domain.LoginRequest{
		Login:    "ivan@example.com",
		Password: "secret123",
	}, "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	refreshed, err := svc.RefreshTokens(context.Background(), tokens.RefreshToken, "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("RefreshTokens() error = %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken == "" {
		t.Fatal("RefreshTokens() returned empty tokens")
	}
	if len(sessions.sessions) != 1 {
		t.Errorf("sessions stored = %d, want 1", len(sessions.sessions))
	}

	if _, err := svc.RefreshTokens(context.Background(), "unknown-token", "test-agent", "127.0.0.1"); err == nil {
		t.Error("unknown refresh token accepted")
	}
}
