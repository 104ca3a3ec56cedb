package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
	"github.com/jackc/pgx/v5"
)

type stubIntegrationStore struct {
	account   *models.IntegrationAccount
	upserted  *models.IntegrationAccount
	touchedID int64
	deleted   bool
	deleteErr error
}

func (s *stubIntegrationStore) Upsert(_ context.Context, account *models.IntegrationAccount) (*models.IntegrationAccount, error) {
	s.upserted = account
	return account, nil
}

func (s *stubIntegrationStore) GetByUserAndPlatform(_ context.Context, _ int64, _ string) (*models.IntegrationAccount, error) {
	if s.account == nil {
		return nil, pgx.ErrNoRows
	}
	return s.account, nil
}

func (s *stubIntegrationStore) ListByUser(_ context.Context, _ int64) ([]models.IntegrationAccount, error) {
	if s.account == nil {
		return nil, nil
	}
	return []models.IntegrationAccount{*s.account}, nil
}

func (s *stubIntegrationStore) TouchSync(_ context.Context, id int64, _ time.Time) error {
	s.touchedID = id
	return nil
}

func (s *stubIntegrationStore) Delete(_ context.Context, _ int64, _ string) (bool, error) {
	return s.deleted, s.deleteErr
}

type stubActivityImporter struct {
	seen     map[string]bool
	imported []models.Activity
}

func (s *stubActivityImporter) UpsertImported(_ context.Context, activity *models.Activity) (bool, error) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	key := activity.Source + ":" + *activity.ExternalID
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	s.imported = append(s.imported, *activity)
	return true, nil
}

type stubEvaluator struct {
	calls int
}

func (s *stubEvaluator) EvaluateForUser(_ context.Context, _ int64) ([]string, error) {
	s.calls++
	return nil, nil
}

type fakePlatformClient struct {
	platform   string
	activities []models.Activity
	since      time.Time
	err        error
}

func (f *fakePlatformClient) Platform() string { return f.platform }

func (f *fakePlatformClient) FetchActivities(_ context.Context, _ *models.IntegrationAccount, since time.Time) ([]models.Activity, error) {
	f.since = since
	return f.activities, f.err
}

func strptr(s string) *string { return &s }

func TestConnectPlatformRejectsUnknownPlatform(t *testing.T) {
	service := NewSyncService(&stubIntegrationStore{}, &stubActivityImporter{}, nil,
		&fakePlatformClient{platform: models.PlatformStrava})

	_, err := service.ConnectPlatform(context.Background(), 1, ConnectPlatformInput{
		Platform:    "fitbit",
		ExternalID:  "abc",
		AccessToken: "token",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestConnectPlatformReportsUnconfiguredPlatform(t *testing.T) {
	service := NewSyncService(&stubIntegrationStore{}, &stubActivityImporter{}, nil,
		&fakePlatformClient{platform: models.PlatformStrava})

	_, err := service.ConnectPlatform(context.Background(), 1, ConnectPlatformInput{
		Platform:    models.PlatformGarmin,
		ExternalID:  "abc",
		AccessToken: "token",
	})
	if !errors.Is(err, ErrPlatformUnavailable) {
		t.Fatalf("expected ErrPlatformUnavailable, got %v", err)
	}
}

func TestSyncImportsNewActivitiesOnly(t *testing.T) {
	store := &stubIntegrationStore{
		account: &models.IntegrationAccount{ID: 5, UserID: 1, Platform: models.PlatformStrava},
	}
	importer := &stubActivityImporter{}
	evaluator := &stubEvaluator{}
	client := &fakePlatformClient{
		platform: models.PlatformStrava,
		activities: []models.Activity{
			{Type: "running", ExternalID: strptr("ext-1"), StartedAt: time.Now(), DurationMinutes: 30},
			{Type: "running", ExternalID: strptr("ext-1"), StartedAt: time.Now(), DurationMinutes: 30},
			{Type: "cycling", ExternalID: strptr("ext-2"), StartedAt: time.Now(), DurationMinutes: 45},
			{Type: "cycling", StartedAt: time.Now(), DurationMinutes: 45},
		},
	}
	service := NewSyncService(store, importer, evaluator, client)

	result, err := service.Sync(context.Background(), 1, models.PlatformStrava)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if result.Fetched != 4 {
		t.Fatalf("expected 4 fetched, got %d", result.Fetched)
	}
	if result.Imported != 2 {
		t.Fatalf("expected 2 imported, got %d", result.Imported)
	}
	for _, activity := range importer.imported {
		if activity.UserID != 1 {
			t.Fatalf("expected imported activity to carry user id 1, got %d", activity.UserID)
		}
		if activity.Source != models.PlatformStrava {
			t.Fatalf("expected source strava, got %s", activity.Source)
		}
	}
	if store.touchedID != 5 {
		t.Fatalf("expected last sync touch on account 5, got %d", store.touchedID)
	}
	if evaluator.calls != 1 {
		t.Fatalf("expected one achievement evaluation, got %d", evaluator.calls)
	}
}

func TestSyncUsesLastSyncAsWindowStart(t *testing.T) {
	lastSync := time.Now().Add(-2 * time.Hour).UTC()
	store := &stubIntegrationStore{
		account: &models.IntegrationAccount{ID: 5, UserID: 1, Platform: models.PlatformStrava, LastSyncAt: &lastSync},
	}
	client := &fakePlatformClient{platform: models.PlatformStrava}
	service := NewSyncService(store, &stubActivityImporter{}, nil, client)

	if _, err := service.Sync(context.Background(), 1, models.PlatformStrava); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !client.since.Equal(lastSync) {
		t.Fatalf("expected fetch since %v, got %v", lastSync, client.since)
	}
}

func TestSyncWithoutConnectionReportsNotFound(t *testing.T) {
	service := NewSyncService(&stubIntegrationStore{}, &stubActivityImporter{}, nil,
		&fakePlatformClient{platform: models.PlatformStrava})

	_, err := service.Sync(context.Background(), 1, models.PlatformStrava)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDisconnectMissingAccount(t *testing.T) {
	service := NewSyncService(&stubIntegrationStore{deleted: false}, &stubActivityImporter{}, nil)

	if err := service.Disconnect(context.Background(), 1, models.PlatformPolar); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
