package repository

import (
	"context"
	"time"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
)

type HealthMetricRepository struct {
	db DBTX
}

func NewHealthMetricRepository(db DBTX) *HealthMetricRepository {
	return &HealthMetricRepository{db: db}
}

const healthMetricColumns = `id, user_id, type, value, unit, recorded_at, source, created_at`

func scanHealthMetric(row interface{ Scan(...any) error }) (*models.HealthMetric, error) {
	var metric models.HealthMetric
	err := row.Scan(
		&metric.ID,
		&metric.UserID,
		&metric.Type,
		&metric.Value,
		&metric.Unit,
		&metric.RecordedAt,
		&metric.Source,
		&metric.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &metric, nil
}

func (r *HealthMetricRepository) Create(ctx context.Context, metric *models.HealthMetric) (*models.HealthMetric, error) {
	query := `
		INSERT INTO health_metrics (user_id, type, value, unit, recorded_at, source)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + healthMetricColumns
	return scanHealthMetric(r.db.QueryRow(ctx, query,
		metric.UserID, metric.Type, metric.Value, metric.Unit, metric.RecordedAt.UTC(), metric.Source))
}

func (r *HealthMetricRepository) ListByUserID(
	ctx context.Context,
	userID int64,
	metricType string,
	after *time.Time,
	limit int,
) ([]models.HealthMetric, error) {
	query := `
		SELECT ` + healthMetricColumns + `
		FROM health_metrics
		WHERE user_id = $1
		  AND ($2 = '' OR type = $2)
		  AND ($3::timestamptz IS NULL OR recorded_at >= $3)
		ORDER BY recorded_at DESC, id DESC
		LIMIT $4
	`
	rows, err := r.db.Query(ctx, query, userID, metricType, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metrics := make([]models.HealthMetric, 0)
	for rows.Next() {
		metric, err := scanHealthMetric(rows)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, *metric)
	}
	return metrics, rows.Err()
}

func (r *HealthMetricRepository) Latest(ctx context.Context, userID int64, metricType string) (*models.HealthMetric, error) {
	query := `
		SELECT ` + healthMetricColumns + `
		FROM health_metrics
		WHERE user_id = $1 AND type = $2
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1
	`
	return scanHealthMetric(r.db.QueryRow(ctx, query, userID, metricType))
}

func (r *HealthMetricRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM health_metrics WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
