package repository

import (
	"context"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
)

type GoalRepository struct {
	db DBTX
}

func NewGoalRepository(db DBTX) *GoalRepository {
	return &GoalRepository{db: db}
}

const goalColumns = `id, user_id, title, description, metric, target_value, current_value,
	deadline, status, created_at, updated_at`

func scanGoal(row interface{ Scan(...any) error }) (*models.Goal, error) {
	var goal models.Goal
	err := row.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Title,
		&goal.Description,
		&goal.Metric,
		&goal.TargetValue,
		&goal.CurrentValue,
		&goal.Deadline,
		&goal.Status,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func (r *GoalRepository) Create(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	query := `
		INSERT INTO goals (user_id, title, description, metric, target_value, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'active')
		RETURNING ` + goalColumns
	return scanGoal(r.db.QueryRow(ctx, query,
		goal.UserID, goal.Title, goal.Description, goal.Metric, goal.TargetValue, goal.Deadline))
}

func (r *GoalRepository) GetByIDForUser(ctx context.Context, id, userID int64) (*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1 AND user_id = $2`
	return scanGoal(r.db.QueryRow(ctx, query, id, userID))
}

func (r *GoalRepository) ListByUserID(ctx context.Context, userID int64, status string) ([]models.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = $1
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, userID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := make([]models.Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *goal)
	}
	return goals, rows.Err()
}

type UpdateGoalInput struct {
	Title        *string
	Description  *string
	TargetValue  *float64
	CurrentValue *float64
	Deadline     *string
	Status       *string
}

func (r *GoalRepository) UpdatePartial(ctx context.Context, id, userID int64, req UpdateGoalInput) (*models.Goal, error) {
	query := `
		UPDATE goals
		SET title = COALESCE($1, title),
			description = COALESCE($2, description),
			target_value = COALESCE($3, target_value),
			current_value = COALESCE($4, current_value),
			deadline = COALESCE($5::timestamptz, deadline),
			status = COALESCE($6, status),
			updated_at = NOW()
		WHERE id = $7 AND user_id = $8
		RETURNING ` + goalColumns
	return scanGoal(r.db.QueryRow(ctx, query,
		req.Title, req.Description, req.TargetValue, req.CurrentValue, req.Deadline, req.Status,
		id, userID))
}

// AddProgress bumps current_value and flips status when the target is reached.
func (r *GoalRepository) AddProgress(ctx context.Context, id, userID int64, delta float64) (*models.Goal, error) {
	query := `
		UPDATE goals
		SET current_value = current_value + $3,
			status = CASE
				WHEN status = 'active' AND current_value + $3 >= target_value THEN 'completed'
				ELSE status
			END,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status = 'active'
		RETURNING ` + goalColumns
	return scanGoal(r.db.QueryRow(ctx, query, id, userID, delta))
}

func (r *GoalRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
