package repository

import (
	"context"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
)

type AchievementRepository struct {
	db DBTX
}

func NewAchievementRepository(db DBTX) *AchievementRepository {
	return &AchievementRepository{db: db}
}

func (r *AchievementRepository) ListAll(ctx context.Context) ([]models.Achievement, error) {
	query := `
		SELECT id, code, title, description, icon_url, created_at
		FROM achievements
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	achievements := make([]models.Achievement, 0)
	for rows.Next() {
		var achievement models.Achievement
		if err := rows.Scan(
			&achievement.ID,
			&achievement.Code,
			&achievement.Title,
			&achievement.Description,
			&achievement.IconURL,
			&achievement.CreatedAt,
		); err != nil {
			return nil, err
		}
		achievements = append(achievements, achievement)
	}
	return achievements, rows.Err()
}

func (r *AchievementRepository) ListEarnedByUser(ctx context.Context, userID int64) ([]models.UserAchievement, error) {
	query := `
		SELECT a.id, a.code, a.title, a.description, a.icon_url, a.created_at, ua.earned_at
		FROM user_achievements ua
		JOIN achievements a ON a.id = ua.achievement_id
		WHERE ua.user_id = $1
		ORDER BY ua.earned_at DESC, a.id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	earned := make([]models.UserAchievement, 0)
	for rows.Next() {
		var achievement models.UserAchievement
		if err := rows.Scan(
			&achievement.ID,
			&achievement.Code,
			&achievement.Title,
			&achievement.Description,
			&achievement.IconURL,
			&achievement.CreatedAt,
			&achievement.EarnedAt,
		); err != nil {
			return nil, err
		}
		earned = append(earned, achievement)
	}
	return earned, rows.Err()
}

// Award is idempotent: re-awarding an earned achievement reports false.
func (r *AchievementRepository) Award(ctx context.Context, userID int64, code string) (bool, error) {
	query := `
		INSERT INTO user_achievements (user_id, achievement_id)
		SELECT $1, id FROM achievements WHERE code = $2
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, userID, code)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
