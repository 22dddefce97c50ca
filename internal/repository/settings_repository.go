package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const settingsColumns = `id, store_name, slogan, logo_filename, admin_phone, created_at, updated_at`

type settingsRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSettingsRepository creates a new PostgreSQL-backed settings repository.
func NewSettingsRepository(pool *pgxpool.Pool, logger zerolog.Logger) SettingsRepository {
	return &settingsRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "settings").Logger(),
	}
}

func scanSettings(row scanner) (*model.StoreSettings, error) {
	var s model.StoreSettings
	if err := row.Scan(&s.ID, &s.StoreName, &s.Slogan, &s.LogoFilename, &s.AdminPhone, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepository) Get(ctx context.Context) (*model.StoreSettings, error) {
	s, err := scanSettings(r.pool.QueryRow(ctx,
		`SELECT `+settingsColumns+` FROM store_settings ORDER BY id DESC LIMIT 1`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query store settings")
		return nil, fmt.Errorf("failed to query store settings: %w", err)
	}
	return s, nil
}

// Update applies a partial update to the latest settings row. An empty
// logo filename clears the logo.
func (r *settingsRepository) Update(ctx context.Context, upd *model.StoreSettingsUpdate) (*model.StoreSettings, error) {
	query := `
		UPDATE store_settings
		SET store_name = COALESCE($1, store_name),
		    slogan = COALESCE($2, slogan),
		    logo_filename = CASE WHEN $3::text IS NULL THEN logo_filename ELSE NULLIF($3::text, '') END,
		    admin_phone = COALESCE($4, admin_phone),
		    updated_at = NOW()
		WHERE id = (SELECT id FROM store_settings ORDER BY id DESC LIMIT 1)
		RETURNING ` + settingsColumns

	s, err := scanSettings(r.pool.QueryRow(ctx, query, upd.StoreName, upd.Slogan, upd.LogoFilename, upd.AdminPhone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to update store settings")
		return nil, fmt.Errorf("failed to update store settings: %w", err)
	}

	r.logger.Info().Int64("settings_id", s.ID).Msg("store settings updated")

	return s, nil
}

func (r *settingsRepository) CreateDefault(ctx context.Context) (*model.StoreSettings, error) {
	s, err := scanSettings(r.pool.QueryRow(ctx,
		`INSERT INTO store_settings (store_name, slogan, admin_phone) VALUES ($1, $2, $3) RETURNING `+settingsColumns,
		model.DefaultStoreName, model.DefaultSlogan, model.DefaultAdminPhone,
	))
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to create default store settings")
		return nil, fmt.Errorf("failed to create default store settings: %w", err)
	}
	return s, nil
}
