package services

import (
	"context"
	"testing"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
)

type stubCoachMatcher struct {
	coaches []models.CoachProfile
}

func (s *stubCoachMatcher) ListAll(_ context.Context) ([]models.CoachProfile, error) {
	return s.coaches, nil
}

func TestGetMatchedCoachesSortsByScoreThenRating(t *testing.T) {
	goals := []string{"endurance"}
	budget := 60.0
	service := NewMatchmakingService(&stubCoachMatcher{
		coaches: []models.CoachProfile{
			// 40 goal + 20 rating + 15 experience + 10 certs + 15 budget = 100
			buildCoachProfile(11, []string{"running", "marathon"}, 4.8, 6, 45, []string{"UESCA"}),
			// 40 goal + 20 rating + 15 experience + 15 budget = 90
			buildCoachProfile(12, []string{"endurance"}, 4.9, 4, 55, nil),
			// 20 rating + 15 experience + 10 certs + 15 budget = 60
			buildCoachProfile(13, []string{"yoga"}, 5.0, 10, 40, []string{"RYT"}),
		},
	})

	matched, err := service.GetMatchedCoaches(context.Background(), &models.UserProfile{
		Goals:         &goals,
		MaxHourlyRate: &budget,
	}, 3)
	if err != nil {
		t.Fatalf("GetMatchedCoaches: %v", err)
	}

	if got := len(matched); got != 3 {
		t.Fatalf("expected 3 coaches, got %d", got)
	}
	if matched[0].UserID != 11 || matched[0].MatchScore != 100 {
		t.Fatalf("expected coach 11 with score 100 first, got coach %d with score %d", matched[0].UserID, matched[0].MatchScore)
	}
	if matched[1].UserID != 12 || matched[1].MatchScore != 90 {
		t.Fatalf("expected coach 12 with score 90 second, got coach %d with score %d", matched[1].UserID, matched[1].MatchScore)
	}
	if matched[2].UserID != 13 || matched[2].MatchScore != 60 {
		t.Fatalf("expected coach 13 with score 60 third, got coach %d with score %d", matched[2].UserID, matched[2].MatchScore)
	}
}

func TestGetMatchedCoachesAppliesLimit(t *testing.T) {
	goals := []string{"weight_loss"}
	service := NewMatchmakingService(&stubCoachMatcher{
		coaches: []models.CoachProfile{
			buildCoachProfile(1, []string{"weight_loss"}, 4.5, 5, 60, nil),
			buildCoachProfile(2, []string{"yoga"}, 4.9, 7, 50, nil),
		},
	})

	matched, err := service.GetMatchedCoaches(context.Background(), &models.UserProfile{Goals: &goals}, 1)
	if err != nil {
		t.Fatalf("GetMatchedCoaches: %v", err)
	}
	if got := len(matched); got != 1 {
		t.Fatalf("expected 1 coach, got %d", got)
	}
	if matched[0].UserID != 1 {
		t.Fatalf("expected top coach to be 1, got %d", matched[0].UserID)
	}
}

func TestGetMatchedCoachesBudgetBonusRequiresPreference(t *testing.T) {
	goals := []string{"weight_loss"}
	budget := 50.0
	service := NewMatchmakingService(&stubCoachMatcher{
		coaches: []models.CoachProfile{
			buildCoachProfile(1, []string{"weight_loss"}, 4.2, 4, 40, nil),
			buildCoachProfile(2, []string{"weight_loss"}, 4.2, 4, 80, nil),
		},
	})

	matched, err := service.GetMatchedCoaches(context.Background(), &models.UserProfile{
		Goals:         &goals,
		MaxHourlyRate: &budget,
	}, 2)
	if err != nil {
		t.Fatalf("GetMatchedCoaches: %v", err)
	}

	if matched[0].MatchScore != matched[1].MatchScore+15 {
		t.Fatalf("expected budget bonus gap of 15, got %d vs %d", matched[0].MatchScore, matched[1].MatchScore)
	}
}

func TestGoalAliasesHandleSynonyms(t *testing.T) {
	goals := []string{"mobility", "fat_loss"}
	service := NewMatchmakingService(&stubCoachMatcher{
		coaches: []models.CoachProfile{
			buildCoachProfile(1, []string{"yoga", "weight_loss"}, 0, 0, 999, nil),
		},
	})

	matched, err := service.GetMatchedCoaches(context.Background(), &models.UserProfile{
		Goals: &goals,
	}, 1)
	if err != nil {
		t.Fatalf("GetMatchedCoaches: %v", err)
	}

	if got := matched[0].MatchScore; got != 80 {
		t.Fatalf("expected both synonym goals to match for score 80, got %d", got)
	}
}

func TestVerifiedCoachGetsBonus(t *testing.T) {
	verified := true
	unverified := false
	coachA := buildCoachProfile(1, nil, 0, 0, 0, nil)
	coachA.IsVerified = &verified
	coachB := buildCoachProfile(2, nil, 0, 0, 0, nil)
	coachB.IsVerified = &unverified

	service := NewMatchmakingService(&stubCoachMatcher{coaches: []models.CoachProfile{coachB, coachA}})

	matched, err := service.GetMatchedCoaches(context.Background(), &models.UserProfile{}, 2)
	if err != nil {
		t.Fatalf("GetMatchedCoaches: %v", err)
	}

	if matched[0].UserID != 1 || matched[0].MatchScore != 5 {
		t.Fatalf("expected verified coach 1 with score 5 first, got coach %d with score %d", matched[0].UserID, matched[0].MatchScore)
	}
}

func buildCoachProfile(userID int64, specs []string, rating float64, experience int, rate float64, certs []string) models.CoachProfile {
	return models.CoachProfile{
		UserID:             userID,
		Specializations:    &specs,
		Rating:             &rating,
		ExperienceYears:    &experience,
		HourlyRate:         &rate,
		Certifications:     &certs,
		OnboardingComplete: true,
	}
}
