package repository

import (
	"context"
	"time"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
)

type IntegrationRepository struct {
	db DBTX
}

func NewIntegrationRepository(db DBTX) *IntegrationRepository {
	return &IntegrationRepository{db: db}
}

const integrationColumns = `id, user_id, platform, external_id, access_token, refresh_token,
	expires_at, last_sync_at, created_at, updated_at`

func scanIntegration(row interface{ Scan(...any) error }) (*models.IntegrationAccount, error) {
	var account models.IntegrationAccount
	err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.Platform,
		&account.ExternalID,
		&account.AccessToken,
		&account.RefreshToken,
		&account.ExpiresAt,
		&account.LastSyncAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Upsert connects or reconnects a platform account; tokens are replaced on
// reconnect.
func (r *IntegrationRepository) Upsert(ctx context.Context, account *models.IntegrationAccount) (*models.IntegrationAccount, error) {
	query := `
		INSERT INTO integration_accounts (user_id, platform, external_id, access_token, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, platform)
		DO UPDATE SET external_id = EXCLUDED.external_id,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
		RETURNING ` + integrationColumns
	return scanIntegration(r.db.QueryRow(ctx, query,
		account.UserID, account.Platform, account.ExternalID,
		account.AccessToken, account.RefreshToken, account.ExpiresAt))
}

func (r *IntegrationRepository) GetByUserAndPlatform(ctx context.Context, userID int64, platform string) (*models.IntegrationAccount, error) {
	query := `
		SELECT ` + integrationColumns + `
		FROM integration_accounts
		WHERE user_id = $1 AND platform = $2
	`
	return scanIntegration(r.db.QueryRow(ctx, query, userID, platform))
}

func (r *IntegrationRepository) ListByUser(ctx context.Context, userID int64) ([]models.IntegrationAccount, error) {
	query := `
		SELECT ` + integrationColumns + `
		FROM integration_accounts
		WHERE user_id = $1
		ORDER BY platform
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]models.IntegrationAccount, 0)
	for rows.Next() {
		account, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

func (r *IntegrationRepository) TouchSync(ctx context.Context, id int64, syncedAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE integration_accounts
		SET last_sync_at = $2, updated_at = NOW()
		WHERE id = $1
	`, id, syncedAt.UTC())
	return err
}

func (r *IntegrationRepository) Delete(ctx context.Context, userID int64, platform string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM integration_accounts
		WHERE user_id = $1 AND platform = $2
	`, userID, platform)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
