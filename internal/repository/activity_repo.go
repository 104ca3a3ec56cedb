package repository

import (
	"context"
	"time"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
)

type ActivityRepository struct {
	db DBTX
}

func NewActivityRepository(db DBTX) *ActivityRepository {
	return &ActivityRepository{db: db}
}

const activityColumns = `id, user_id, type, title, started_at, duration_minutes, distance_km,
	calories, avg_heart_rate, source, external_id, notes, created_at, updated_at`

func scanActivity(row interface{ Scan(...any) error }) (*models.Activity, error) {
	var activity models.Activity
	err := row.Scan(
		&activity.ID,
		&activity.UserID,
		&activity.Type,
		&activity.Title,
		&activity.StartedAt,
		&activity.DurationMinutes,
		&activity.DistanceKM,
		&activity.Calories,
		&activity.AvgHeartRate,
		&activity.Source,
		&activity.ExternalID,
		&activity.Notes,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	query := `
		INSERT INTO activities (user_id, type, title, started_at, duration_minutes, distance_km,
			calories, avg_heart_rate, source, external_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + activityColumns
	return scanActivity(r.db.QueryRow(ctx, query,
		activity.UserID, activity.Type, activity.Title, activity.StartedAt.UTC(),
		activity.DurationMinutes, activity.DistanceKM, activity.Calories,
		activity.AvgHeartRate, activity.Source, activity.ExternalID, activity.Notes))
}

// UpsertImported inserts an activity pulled from a fitness platform; a
// repeat import of the same external id is a no-op.
func (r *ActivityRepository) UpsertImported(ctx context.Context, activity *models.Activity) (bool, error) {
	query := `
		INSERT INTO activities (user_id, type, title, started_at, duration_minutes, distance_km,
			calories, avg_heart_rate, source, external_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, source, external_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		activity.UserID, activity.Type, activity.Title, activity.StartedAt.UTC(),
		activity.DurationMinutes, activity.DistanceKM, activity.Calories,
		activity.AvgHeartRate, activity.Source, activity.ExternalID, activity.Notes)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ActivityRepository) GetByIDForUser(ctx context.Context, id, userID int64) (*models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1 AND user_id = $2`
	return scanActivity(r.db.QueryRow(ctx, query, id, userID))
}

type ActivityListFilter struct {
	Type   string
	After  *time.Time
	Before *time.Time
	Limit  int
	Offset int
}

func (r *ActivityRepository) ListByUserID(ctx context.Context, userID int64, filter ActivityListFilter) ([]models.Activity, int, error) {
	where := `
		WHERE user_id = $1
		  AND ($2 = '' OR type = $2)
		  AND ($3::timestamptz IS NULL OR started_at >= $3)
		  AND ($4::timestamptz IS NULL OR started_at < $4)
	`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM activities`+where,
		userID, filter.Type, filter.After, filter.Before).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + activityColumns + `
		FROM activities` + where + `
		ORDER BY started_at DESC, id DESC
		LIMIT $5 OFFSET $6
	`
	rows, err := r.db.Query(ctx, query,
		userID, filter.Type, filter.After, filter.Before, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	activities := make([]models.Activity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, 0, err
		}
		activities = append(activities, *activity)
	}
	return activities, total, rows.Err()
}

func (r *ActivityRepository) TotalsForUser(ctx context.Context, userID int64) (*models.ActivityTotals, error) {
	query := `
		SELECT COUNT(*),
			   COALESCE(SUM(distance_km), 0),
			   COALESCE(SUM(duration_minutes), 0),
			   COUNT(DISTINCT started_at::date)
		FROM activities
		WHERE user_id = $1
	`
	var totals models.ActivityTotals
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&totals.Count,
		&totals.TotalDistanceKM,
		&totals.TotalDuration,
		&totals.ActiveDays,
	)
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *ActivityRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM activities WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
