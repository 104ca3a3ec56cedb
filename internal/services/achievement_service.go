package services

import (
	"context"
	"log"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
)

type achievementStore interface {
	ListAll(ctx context.Context) ([]models.Achievement, error)
	ListEarnedByUser(ctx context.Context, userID int64) ([]models.UserAchievement, error)
	Award(ctx context.Context, userID int64, code string) (bool, error)
}

type activityTotalsReader interface {
	TotalsForUser(ctx context.Context, userID int64) (*models.ActivityTotals, error)
}

// Milestone codes; the achievements table seeds one row per code.
const (
	AchievementFirstActivity   = "first_activity"
	AchievementTenActivities   = "ten_activities"
	AchievementFiftyActivities = "fifty_activities"
	AchievementDistance100KM   = "distance_100km"
	AchievementDistance500KM   = "distance_500km"
	AchievementActiveWeek      = "active_week"
)

type achievementRule struct {
	code string
	met  func(t *models.ActivityTotals) bool
}

var achievementRules = []achievementRule{
	{AchievementFirstActivity, func(t *models.ActivityTotals) bool { return t.Count >= 1 }},
	{AchievementTenActivities, func(t *models.ActivityTotals) bool { return t.Count >= 10 }},
	{AchievementFiftyActivities, func(t *models.ActivityTotals) bool { return t.Count >= 50 }},
	{AchievementDistance100KM, func(t *models.ActivityTotals) bool { return t.TotalDistanceKM >= 100 }},
	{AchievementDistance500KM, func(t *models.ActivityTotals) bool { return t.TotalDistanceKM >= 500 }},
	{AchievementActiveWeek, func(t *models.ActivityTotals) bool { return t.ActiveDays >= 7 }},
}

type AchievementService struct {
	achievementRepo achievementStore
	activityRepo    activityTotalsReader
}

func NewAchievementService(achievementRepo achievementStore, activityRepo activityTotalsReader) *AchievementService {
	return &AchievementService{
		achievementRepo: achievementRepo,
		activityRepo:    activityRepo,
	}
}

func (s *AchievementService) ListCatalog(ctx context.Context) ([]models.Achievement, error) {
	return s.achievementRepo.ListAll(ctx)
}

func (s *AchievementService) ListEarned(ctx context.Context, userID int64) ([]models.UserAchievement, error) {
	return s.achievementRepo.ListEarnedByUser(ctx, userID)
}

// EvaluateForUser awards every milestone the user's activity totals now
// satisfy. Awarding is idempotent, so calling after every logged activity
// is safe.
func (s *AchievementService) EvaluateForUser(ctx context.Context, userID int64) ([]string, error) {
	totals, err := s.activityRepo.TotalsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	awarded := make([]string, 0)
	for _, rule := range achievementRules {
		if !rule.met(totals) {
			continue
		}
		isNew, err := s.achievementRepo.Award(ctx, userID, rule.code)
		if err != nil {
			return awarded, err
		}
		if isNew {
			awarded = append(awarded, rule.code)
		}
	}
	return awarded, nil
}

// EvaluateAsync is the fire-and-forget variant used after activity writes;
// a failed evaluation never fails the request that triggered it.
func (s *AchievementService) EvaluateAsync(userID int64) {
	go func() {
		if _, err := s.EvaluateForUser(context.Background(), userID); err != nil {
			log.Printf("achievements: evaluate for user %d: %v", userID, err)
		}
	}()
}
