package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"medbook/config"
	"medbook/internal/domain"
	"medbook/internal/repository"
)

type fakeNotificationRepo struct {
	repository.NotificationRepository

	created []domain.Notification
	pending []domain.Notification

	sent      []int64
	failed    []int64
	lastFinal bool
	lastError string
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n domain.Notification) (int64, error) {
	r.created = append(r.created, n)
	return int64(len(r.created)), nil
}

func (r *fakeNotificationRepo) GetPending(ctx context.Context, limit, maxAttempts int) ([]domain.Notification, error) {
	return r.pending, nil
}

func (r *fakeNotificationRepo) MarkSent(ctx context.Context, id int64) error {
	r.sent = append(r.sent, id)
	return nil
}

func (r *fakeNotificationRepo) MarkFailed(ctx context.Context, id int64, attempts int, lastError string, final bool) error {
	r.failed = append(r.failed, id)
	r.lastFinal = final
	r.lastError = lastError
	return nil
}

type fakeSender struct {
	sent    []string
	sendErr error
}

func (s *fakeSender) Send(to, subject, body string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, to)
	return nil
}

func notificationTestConfig() *config.Config {
	return &config.Config{
		BaseURL: "http://localhost:8080",
		Outbox: config.OutboxConfig{
			Interval:    time.Second,
			BatchSize:   10,
			MaxAttempts: 3,
		},
	}
}

func TestEnqueueActivation(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, &fakeSender{}, notificationTestConfig(), zap.NewNop())

	user := &domain.User{ID: 1, FirstName: "Иван", Email: "ivan@example.com"}
	if err := svc.EnqueueActivation(context.Background(), user, "tok123"); err != nil {
		t.Fatalf("EnqueueActivation() error = %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(repo.created))
	}
	n := repo.created[0]
	if n.Email != "ivan@example.com" {
		t.Errorf("notification email = %s", n.Email)
	}
	if !strings.Contains(n.Body, "/api/v1/auth/activate?token=tok123") {
		t.Errorf("activation link missing from body: %s", n.Body)
	}
}

func TestEnqueueWithoutEmail(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, &fakeSender{}, notificationTestConfig(), zap.NewNop())

	user := &domain.User{ID: 1, FirstName: "Иван"}
	if err := svc.EnqueueActivation(context.Background(), user, "tok123"); err == nil {
		t.Fatal("EnqueueActivation() without email expected error")
	}
	if len(repo.created) != 0 {
		t.Errorf("created %d notifications, want 0", len(repo.created))
	}
}

func TestProcessBatchSends(t *testing.T) {
	repo := &fakeNotificationRepo{
		pending: []domain.Notification{
			{ID: 1, Email: "a@example.com", Subject: "s", Body: "b"},
			{ID: 2, Email: "b@example.com", Subject: "s", Body: "b"},
		},
	}
	sender := &fakeSender{}
	svc := NewNotificationService(repo, sender, notificationTestConfig(), zap.NewNop())

	svc.processBatch(context.Background())

	if len(sender.sent) != 2 {
		t.Fatalf("sent %d mails, want 2", len(sender.sent))
	}
	if len(repo.sent) != 2 {
		t.Fatalf("marked sent %d notifications, want 2", len(repo.sent))
	}
	if len(repo.failed) != 0 {
		t.Errorf("marked failed %d notifications, want 0", len(repo.failed))
	}
}

func TestProcessBatchRetriesOnFailure(t *testing.T) {
	repo := &fakeNotificationRepo{
		pending: []domain.Notification{
			{ID: 1, Email: "a@example.com", Subject: "s", Body: "b", Attempts: 0},
		},
	}
	sender := &fakeSender{sendErr: errors.New("smtp unavailable")}
	svc := NewNotificationService(repo, sender, notificationTestConfig(), zap.NewNop())

	svc.processBatch(context.Background())

	if len(repo.failed) != 1 {
		t.Fatalf("marked failed %d notifications, want 1", len(repo.failed))
	}
	if repo.lastFinal {
		t.Error("first failure marked final, want retryable")
	}
	if repo.lastError != "smtp unavailable" {
		t.Errorf("last error = %q", repo.lastError)
	}
}

func TestProcessBatchFinalFailure(t *testing.T) {
	repo := &fakeNotificationRepo{
		pending: []domain.Notification{
			{ID: 1, Email: "a@example.com", Subject: "s", Body: "b", Attempts: 2},
		},
	}
	sender := &fakeSender{sendErr: errors.New("smtp unavailable")}
	svc := NewNotificationService(repo, sender, notificationTestConfig(), zap.NewNop())

	svc.processBatch(context.Background())

	if len(repo.failed) != 1 {
		t.Fatalf("marked failed %d notifications, want 1", len(repo.failed))
	}
	if !repo.lastFinal {
		t.Error("third failure not marked final")
	}
}
