package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
	"github.com/jackc/pgx/v5"
)

// PlatformClient pulls activities from one external fitness platform.
type PlatformClient interface {
	Platform() string
	FetchActivities(ctx context.Context, account *models.IntegrationAccount, since time.Time) ([]models.Activity, error)
}

type integrationStore interface {
	Upsert(ctx context.Context, account *models.IntegrationAccount) (*models.IntegrationAccount, error)
	GetByUserAndPlatform(ctx context.Context, userID int64, platform string) (*models.IntegrationAccount, error)
	ListByUser(ctx context.Context, userID int64) ([]models.IntegrationAccount, error)
	TouchSync(ctx context.Context, id int64, syncedAt time.Time) error
	Delete(ctx context.Context, userID int64, platform string) (bool, error)
}

type importedActivityStore interface {
	UpsertImported(ctx context.Context, activity *models.Activity) (bool, error)
}

type achievementEvaluator interface {
	EvaluateForUser(ctx context.Context, userID int64) ([]string, error)
}

// First connect without a previous sync pulls this far back.
const initialSyncWindow = 30 * 24 * time.Hour

type SyncService struct {
	clients         map[string]PlatformClient
	integrationRepo integrationStore
	activityRepo    importedActivityStore
	achievements    achievementEvaluator
}

func NewSyncService(
	integrationRepo integrationStore,
	activityRepo importedActivityStore,
	achievements achievementEvaluator,
	clients ...PlatformClient,
) *SyncService {
	byPlatform := make(map[string]PlatformClient, len(clients))
	for _, client := range clients {
		if client != nil {
			byPlatform[client.Platform()] = client
		}
	}
	return &SyncService{
		clients:         byPlatform,
		integrationRepo: integrationRepo,
		activityRepo:    activityRepo,
		achievements:    achievements,
	}
}

type ConnectPlatformInput struct {
	Platform     string
	ExternalID   string
	AccessToken  string
	RefreshToken *string
	ExpiresAt    *time.Time
}

func (s *SyncService) ConnectPlatform(ctx context.Context, userID int64, input ConnectPlatformInput) (*models.IntegrationAccount, error) {
	if input.ExternalID == "" || input.AccessToken == "" {
		return nil, ErrInvalidInput
	}
	if _, ok := s.clients[input.Platform]; !ok {
		if !isKnownPlatform(input.Platform) {
			return nil, ErrInvalidInput
		}
		return nil, ErrPlatformUnavailable
	}

	return s.integrationRepo.Upsert(ctx, &models.IntegrationAccount{
		UserID:       userID,
		Platform:     input.Platform,
		ExternalID:   input.ExternalID,
		AccessToken:  input.AccessToken,
		RefreshToken: input.RefreshToken,
		ExpiresAt:    input.ExpiresAt,
	})
}

func (s *SyncService) ListConnections(ctx context.Context, userID int64) ([]models.IntegrationAccount, error) {
	return s.integrationRepo.ListByUser(ctx, userID)
}

func (s *SyncService) Disconnect(ctx context.Context, userID int64, platform string) error {
	deleted, err := s.integrationRepo.Delete(ctx, userID, platform)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

type SyncResult struct {
	Platform string    `json:"platform"`
	Fetched  int       `json:"fetched"`
	Imported int       `json:"imported"`
	SyncedAt time.Time `json:"synced_at"`
}

// Sync pulls activities recorded since the last sync and imports the ones
// not seen before. Re-running never duplicates an activity.
func (s *SyncService) Sync(ctx context.Context, userID int64, platform string) (*SyncResult, error) {
	account, err := s.integrationRepo.GetByUserAndPlatform(ctx, userID, platform)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	client, ok := s.clients[platform]
	if !ok {
		return nil, ErrPlatformUnavailable
	}

	syncedAt := time.Now().UTC()
	since := syncedAt.Add(-initialSyncWindow)
	if account.LastSyncAt != nil {
		since = *account.LastSyncAt
	}

	activities, err := client.FetchActivities(ctx, account, since)
	if err != nil {
		return nil, fmt.Errorf("fetch %s activities: %w", platform, err)
	}

	imported := 0
	for i := range activities {
		activity := activities[i]
		activity.UserID = userID
		activity.Source = platform
		if activity.ExternalID == nil || *activity.ExternalID == "" {
			continue
		}
		isNew, err := s.activityRepo.UpsertImported(ctx, &activity)
		if err != nil {
			return nil, err
		}
		if isNew {
			imported++
		}
	}

	if err := s.integrationRepo.TouchSync(ctx, account.ID, syncedAt); err != nil {
		return nil, err
	}

	if imported > 0 && s.achievements != nil {
		if _, err := s.achievements.EvaluateForUser(ctx, userID); err != nil {
			log.Printf("sync: evaluate achievements for user %d: %v", userID, err)
		}
	}

	return &SyncResult{
		Platform: platform,
		Fetched:  len(activities),
		Imported: imported,
		SyncedAt: syncedAt,
	}, nil
}

func isKnownPlatform(platform string) bool {
	switch platform {
	case models.PlatformStrava, models.PlatformGarmin, models.PlatformPolar:
		return true
	default:
		return false
	}
}
