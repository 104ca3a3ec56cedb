package repository

import (
	"context"
	"time"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
)

type NutritionRepository struct {
	db DBTX
}

func NewNutritionRepository(db DBTX) *NutritionRepository {
	return &NutritionRepository{db: db}
}

const nutritionColumns = `id, user_id, logged_at, meal_type, name, calories, protein_g, carbs_g,
	fat_g, notes, created_at, updated_at`

func scanNutritionLog(row interface{ Scan(...any) error }) (*models.NutritionLog, error) {
	var entry models.NutritionLog
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.LoggedAt,
		&entry.MealType,
		&entry.Name,
		&entry.Calories,
		&entry.ProteinG,
		&entry.CarbsG,
		&entry.FatG,
		&entry.Notes,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *NutritionRepository) Create(ctx context.Context, entry *models.NutritionLog) (*models.NutritionLog, error) {
	query := `
		INSERT INTO nutrition_logs (user_id, logged_at, meal_type, name, calories, protein_g, carbs_g, fat_g, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + nutritionColumns
	return scanNutritionLog(r.db.QueryRow(ctx, query,
		entry.UserID, entry.LoggedAt.UTC(), entry.MealType, entry.Name, entry.Calories,
		entry.ProteinG, entry.CarbsG, entry.FatG, entry.Notes))
}

func (r *NutritionRepository) GetByIDForUser(ctx context.Context, id, userID int64) (*models.NutritionLog, error) {
	query := `SELECT ` + nutritionColumns + ` FROM nutrition_logs WHERE id = $1 AND user_id = $2`
	return scanNutritionLog(r.db.QueryRow(ctx, query, id, userID))
}

func (r *NutritionRepository) ListByUserID(
	ctx context.Context,
	userID int64,
	day *time.Time,
	limit int,
	offset int,
) ([]models.NutritionLog, int, error) {
	where := `
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR logged_at::date = $2::date)
	`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM nutrition_logs`+where, userID, day).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + nutritionColumns + `
		FROM nutrition_logs` + where + `
		ORDER BY logged_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, userID, day, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]models.NutritionLog, 0)
	for rows.Next() {
		entry, err := scanNutritionLog(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *entry)
	}
	return entries, total, rows.Err()
}

func (r *NutritionRepository) DailySummaries(ctx context.Context, userID int64, days int) ([]models.DailyNutritionSummary, error) {
	query := `
		SELECT logged_at::date::text,
			   COALESCE(SUM(calories), 0),
			   COALESCE(SUM(protein_g), 0),
			   COALESCE(SUM(carbs_g), 0),
			   COALESCE(SUM(fat_g), 0),
			   COUNT(*)
		FROM nutrition_logs
		WHERE user_id = $1
		  AND logged_at >= NOW() - ($2 || ' days')::interval
		GROUP BY logged_at::date
		ORDER BY logged_at::date DESC
	`
	rows, err := r.db.Query(ctx, query, userID, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]models.DailyNutritionSummary, 0)
	for rows.Next() {
		var summary models.DailyNutritionSummary
		if err := rows.Scan(
			&summary.Day,
			&summary.Calories,
			&summary.ProteinG,
			&summary.CarbsG,
			&summary.FatG,
			&summary.Meals,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

type UpdateNutritionInput struct {
	MealType *string
	Name     *string
	Calories *float64
	ProteinG *float64
	CarbsG   *float64
	FatG     *float64
	Notes    *string
}

func (r *NutritionRepository) UpdatePartial(ctx context.Context, id, userID int64, req UpdateNutritionInput) (*models.NutritionLog, error) {
	query := `
		UPDATE nutrition_logs
		SET meal_type = COALESCE($1, meal_type),
			name = COALESCE($2, name),
			calories = COALESCE($3, calories),
			protein_g = COALESCE($4, protein_g),
			carbs_g = COALESCE($5, carbs_g),
			fat_g = COALESCE($6, fat_g),
			notes = COALESCE($7, notes),
			updated_at = NOW()
		WHERE id = $8 AND user_id = $9
		RETURNING ` + nutritionColumns
	return scanNutritionLog(r.db.QueryRow(ctx, query,
		req.MealType, req.Name, req.Calories, req.ProteinG, req.CarbsG, req.FatG, req.Notes,
		id, userID))
}

func (r *NutritionRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM nutrition_logs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
