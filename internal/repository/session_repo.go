package repository

import (
	"context"
	"time"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
)

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, user_id, coach_id, scheduled_at, duration_minutes, status, notes,
	created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (*models.CoachingSession, error) {
	var session models.CoachingSession
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.CoachID,
		&session.ScheduledAt,
		&session.DurationMinutes,
		&session.Status,
		&session.Notes,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

type CreateSessionInput struct {
	UserID          int64
	CoachID         int64
	ScheduledAt     time.Time
	DurationMinutes int
	Notes           *string
}

func (r *SessionRepository) Create(ctx context.Context, input CreateSessionInput) (*models.CoachingSession, error) {
	query := `
		INSERT INTO coaching_sessions (user_id, coach_id, scheduled_at, duration_minutes, status, notes)
		VALUES ($1, $2, $3, $4, 'pending', $5)
		RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRow(ctx, query,
		input.UserID, input.CoachID, input.ScheduledAt, input.DurationMinutes, input.Notes))
}

func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*models.CoachingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM coaching_sessions WHERE id = $1`
	return scanSession(r.db.QueryRow(ctx, query, id))
}

func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.CoachingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM coaching_sessions WHERE id = $1 FOR UPDATE`
	return scanSession(r.db.QueryRow(ctx, query, id))
}

// HasConflict reports whether the coach already has a non-cancelled session
// overlapping [scheduledAt, scheduledAt+duration).
func (r *SessionRepository) HasConflict(
	ctx context.Context,
	coachID int64,
	scheduledAt time.Time,
	durationMinutes int,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM coaching_sessions
			WHERE coach_id = $1
			  AND status <> 'cancelled'
			  AND scheduled_at < $2 + ($3 || ' minutes')::interval
			  AND scheduled_at + (duration_minutes || ' minutes')::interval > $2
		)
	`
	var exists bool
	err := r.db.QueryRow(ctx, query, coachID, scheduledAt, durationMinutes).Scan(&exists)
	return exists, err
}

type SessionListFilter struct {
	ActorID   int64
	Role      string
	Status    string
	Timeframe string
}

func (r *SessionRepository) List(ctx context.Context, filter SessionListFilter) ([]models.CoachingSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM coaching_sessions
		WHERE (($2 = 'coach' AND coach_id = $1) OR ($2 <> 'coach' AND user_id = $1))
		  AND ($3 = '' OR status = $3)
		  AND ($4 <> 'upcoming' OR scheduled_at >= NOW())
		  AND ($4 <> 'past' OR scheduled_at < NOW())
		ORDER BY scheduled_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, filter.ActorID, filter.Role, filter.Status, filter.Timeframe)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.CoachingSession, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) UpdateStatus(ctx context.Context, id int64, status string) (*models.CoachingSession, error) {
	query := `
		UPDATE coaching_sessions
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRow(ctx, query, id, status))
}
