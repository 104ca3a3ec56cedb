package repository

import (
	"context"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
)

type CoachProfileRepository struct {
	db DBTX
}

func NewCoachProfileRepository(db DBTX) *CoachProfileRepository {
	return &CoachProfileRepository{db: db}
}

const coachProfileColumns = `id, user_id, full_name, avatar_url, bio, specializations, certifications,
	experience_years, hourly_rate, rating, total_clients, is_verified,
	onboarding_complete, created_at, updated_at`

func scanCoachProfile(row interface{ Scan(...any) error }) (*models.CoachProfile, error) {
	var profile models.CoachProfile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.Bio,
		&profile.Specializations,
		&profile.Certifications,
		&profile.ExperienceYears,
		&profile.HourlyRate,
		&profile.Rating,
		&profile.TotalClients,
		&profile.IsVerified,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *CoachProfileRepository) CreateEmpty(ctx context.Context, userID int64) error {
	query := `INSERT INTO coach_profiles (user_id) VALUES ($1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *CoachProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.CoachProfile, error) {
	query := `SELECT ` + coachProfileColumns + ` FROM coach_profiles WHERE user_id = $1`
	return scanCoachProfile(r.db.QueryRow(ctx, query, userID))
}

func (r *CoachProfileRepository) ListAll(ctx context.Context) ([]models.CoachProfile, error) {
	query := `
		SELECT ` + coachProfileColumns + `
		FROM coach_profiles
		WHERE onboarding_complete = TRUE
		ORDER BY rating DESC NULLS LAST, id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.CoachProfile, 0)
	for rows.Next() {
		profile, err := scanCoachProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

type CoachListFilter struct {
	Specialization string
	MaxHourlyRate  *float64
	VerifiedOnly   bool
	Limit          int
	Offset         int
}

func (r *CoachProfileRepository) List(ctx context.Context, filter CoachListFilter) ([]models.CoachProfile, int, error) {
	where := `
		WHERE onboarding_complete = TRUE
		  AND ($1 = '' OR $1 = ANY(specializations))
		  AND ($2::numeric IS NULL OR hourly_rate <= $2)
		  AND (NOT $3 OR is_verified = TRUE)
	`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM coach_profiles`+where,
		filter.Specialization, filter.MaxHourlyRate, filter.VerifiedOnly).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + coachProfileColumns + `
		FROM coach_profiles` + where + `
		ORDER BY rating DESC NULLS LAST, id
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.Query(ctx, query,
		filter.Specialization, filter.MaxHourlyRate, filter.VerifiedOnly, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	profiles := make([]models.CoachProfile, 0)
	for rows.Next() {
		profile, err := scanCoachProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, total, rows.Err()
}

type CoachOnboardingInput struct {
	FullName        string
	Bio             string
	Specializations []string
	Certifications  []string
	ExperienceYears int
	HourlyRate      float64
}

func (r *CoachProfileRepository) UpdateOnboarding(ctx context.Context, userID int64, req CoachOnboardingInput) (*models.CoachProfile, error) {
	query := `
		UPDATE coach_profiles
		SET full_name = $1,
			bio = $2,
			specializations = $3,
			certifications = $4,
			experience_years = $5,
			hourly_rate = $6,
			onboarding_complete = TRUE,
			updated_at = NOW()
		WHERE user_id = $7
		RETURNING ` + coachProfileColumns
	return scanCoachProfile(r.db.QueryRow(ctx, query,
		req.FullName,
		req.Bio,
		req.Specializations,
		req.Certifications,
		req.ExperienceYears,
		req.HourlyRate,
		userID,
	))
}

type UpdateCoachProfileInput struct {
	FullName        *string
	AvatarURL       *string
	Bio             *string
	Specializations *[]string
	Certifications  *[]string
	ExperienceYears *int
	HourlyRate      *float64
}

func (r *CoachProfileRepository) UpdatePartial(ctx context.Context, userID int64, req UpdateCoachProfileInput) (*models.CoachProfile, error) {
	query := `
		UPDATE coach_profiles
		SET full_name = COALESCE($1, full_name),
			avatar_url = COALESCE($2, avatar_url),
			bio = COALESCE($3, bio),
			specializations = COALESCE($4, specializations),
			certifications = COALESCE($5, certifications),
			experience_years = COALESCE($6, experience_years),
			hourly_rate = COALESCE($7, hourly_rate),
			updated_at = NOW()
		WHERE user_id = $8
		RETURNING ` + coachProfileColumns
	return scanCoachProfile(r.db.QueryRow(ctx, query,
		req.FullName,
		req.AvatarURL,
		req.Bio,
		req.Specializations,
		req.Certifications,
		req.ExperienceYears,
		req.HourlyRate,
		userID,
	))
}
