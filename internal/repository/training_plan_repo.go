package repository

import (
	"context"
	"encoding/json"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
)

type TrainingPlanRepository struct {
	db DBTX
}

func NewTrainingPlanRepository(db DBTX) *TrainingPlanRepository {
	return &TrainingPlanRepository{db: db}
}

const planColumns = `id, user_id, coach_id, title, goal, source, status, weeks, created_at, updated_at`

func scanPlan(row interface{ Scan(...any) error }) (*models.TrainingPlan, error) {
	var plan models.TrainingPlan
	var weeksJSON []byte
	err := row.Scan(
		&plan.ID,
		&plan.UserID,
		&plan.CoachID,
		&plan.Title,
		&plan.Goal,
		&plan.Source,
		&plan.Status,
		&weeksJSON,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(weeksJSON, &plan.Weeks); err != nil {
		return nil, err
	}
	return &plan, nil
}

type CreateTrainingPlanInput struct {
	UserID  int64
	CoachID *int64
	Title   string
	Goal    *string
	Source  string
	Weeks   []models.PlanWeek
}

func (r *TrainingPlanRepository) Create(ctx context.Context, input CreateTrainingPlanInput) (*models.TrainingPlan, error) {
	weeksJSON, err := json.Marshal(input.Weeks)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO training_plans (user_id, coach_id, title, goal, source, status, weeks)
		VALUES ($1, $2, $3, $4, $5, 'active', $6)
		RETURNING ` + planColumns
	return scanPlan(r.db.QueryRow(ctx, query,
		input.UserID, input.CoachID, input.Title, input.Goal, input.Source, weeksJSON))
}

func (r *TrainingPlanRepository) GetByID(ctx context.Context, id int64) (*models.TrainingPlan, error) {
	query := `SELECT ` + planColumns + ` FROM training_plans WHERE id = $1`
	return scanPlan(r.db.QueryRow(ctx, query, id))
}

func (r *TrainingPlanRepository) ListByUserID(ctx context.Context, userID int64) ([]models.TrainingPlan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM training_plans
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query, userID)
}

func (r *TrainingPlanRepository) ListByCoachID(ctx context.Context, coachID int64) ([]models.TrainingPlan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM training_plans
		WHERE coach_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query, coachID)
}

func (r *TrainingPlanRepository) list(ctx context.Context, query string, arg any) ([]models.TrainingPlan, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]models.TrainingPlan, 0)
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

func (r *TrainingPlanRepository) UpdateStatus(ctx context.Context, id int64, status string) (*models.TrainingPlan, error) {
	query := `
		UPDATE training_plans
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + planColumns
	return scanPlan(r.db.QueryRow(ctx, query, id, status))
}

// ArchiveActiveForUser retires the current active plan before a new one is
// created; a user has at most one active plan.
func (r *TrainingPlanRepository) ArchiveActiveForUser(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE training_plans
		SET status = 'archived', updated_at = NOW()
		WHERE user_id = $1 AND status = 'active'
	`, userID)
	return err
}

func (r *TrainingPlanRepository) Delete(ctx context.Context, id int64, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM training_plans WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
