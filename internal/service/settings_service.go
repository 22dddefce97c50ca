package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"storefront/internal/media"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/whatsapp"

	"github.com/rs/zerolog"
)

type settingsService struct {
	settingsRepo repository.SettingsRepository
	media        media.Store
	logger       zerolog.Logger
	now          func() time.Time
}

// NewSettingsService creates a new store settings service.
func NewSettingsService(settingsRepo repository.SettingsRepository, store media.Store, logger zerolog.Logger) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		media:        store,
		logger:       logger.With().Str("service", "settings").Logger(),
		now:          time.Now,
	}
}

// Public returns the storefront view of the settings, falling back to the
// built-in defaults when they cannot be read.
func (s *settingsService) Public(ctx context.Context) *model.PublicStoreInfo {
	settings, err := s.Get(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("serving default store settings")
		return &model.PublicStoreInfo{
			StoreName:      model.DefaultStoreName,
			Slogan:         model.DefaultSlogan,
			WhatsAppNumber: model.DefaultAdminPhone,
		}
	}

	info := &model.PublicStoreInfo{
		StoreName:      settings.StoreName,
		Slogan:         settings.Slogan,
		WhatsAppNumber: whatsapp.NormalisePhone(settings.AdminPhone),
	}
	if settings.LogoFilename != nil && *settings.LogoFilename != "" {
		info.LogoURL = s.media.URL(*settings.LogoFilename)
	}
	return info
}

func (s *settingsService) Get(ctx context.Context) (*model.StoreSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get store settings: %w", err)
	}
	if settings != nil {
		return settings, nil
	}

	s.logger.Info().Msg("no store settings found, creating defaults")

	settings, err = s.settingsRepo.CreateDefault(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create default store settings: %w", err)
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, upd *model.StoreSettingsUpdate) (*model.StoreSettings, error) {
	if upd == nil {
		return nil, model.ErrValidation
	}
	if upd.StoreName != nil {
		name := strings.TrimSpace(*upd.StoreName)
		if name == "" {
			return nil, model.ValidationError("store_name cannot be empty")
		}
		upd.StoreName = &name
	}
	if upd.AdminPhone != nil {
		phone := whatsapp.NormalisePhone(*upd.AdminPhone)
		if phone == "" {
			return nil, model.ValidationError("admin_phone must contain digits")
		}
		upd.AdminPhone = &phone
	}

	if _, err := s.Get(ctx); err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Update(ctx, upd)
	if err != nil {
		return nil, fmt.Errorf("failed to update store settings: %w", err)
	}

	s.logger.Info().Int64("settings_id", settings.ID).Msg("store settings updated")

	return settings, nil
}

// UploadLogo stores a new logo and points the settings at it. The previous
// logo is removed afterwards on a best-effort basis.
func (s *settingsService) UploadLogo(ctx context.Context, filename, contentType string, size int64, body io.Reader) (*model.LogoUpload, error) {
	if !media.IsAllowedImageType(contentType) {
		return nil, model.ValidationError("Invalid file type. Only JPEG, PNG, GIF, and WebP are allowed.")
	}
	if size > media.MaxImageSize {
		return nil, model.ValidationError("File too large. Maximum size is 5MB.")
	}

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = media.ExtensionFor(contentType)
	}
	name := fmt.Sprintf("logo-%d%s", s.now().UnixMilli(), ext)

	url, err := s.media.Save(ctx, name, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to store logo: %w", err)
	}

	settings, err := s.settingsRepo.Update(ctx, &model.StoreSettingsUpdate{LogoFilename: &name})
	if err != nil {
		return nil, fmt.Errorf("failed to update store settings: %w", err)
	}

	if current.LogoFilename != nil && *current.LogoFilename != "" && *current.LogoFilename != name {
		s.removeObject(ctx, *current.LogoFilename)
	}

	s.logger.Info().Str("filename", name).Int64("size", size).Msg("store logo uploaded")

	return &model.LogoUpload{Filename: name, URL: url, Settings: settings}, nil
}

func (s *settingsService) RemoveLogo(ctx context.Context) (*model.StoreSettings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	empty := ""
	settings, err := s.settingsRepo.Update(ctx, &model.StoreSettingsUpdate{LogoFilename: &empty})
	if err != nil {
		return nil, fmt.Errorf("failed to update store settings: %w", err)
	}

	if current.LogoFilename != nil && *current.LogoFilename != "" {
		s.removeObject(ctx, *current.LogoFilename)
	}
	return settings, nil
}

func (s *settingsService) removeObject(ctx context.Context, name string) {
	if err := s.media.Delete(ctx, name); err != nil {
		s.logger.Warn().Err(err).Str("filename", name).Msg("failed to delete old logo")
	}
}
