package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type seedProduct struct {
	category    string
	name        string
	description string
	price       int64
	original    int64
	stock       int
	kind        string
}

var seedCategories = []model.CategoryInput{
	{Name: "Sembako", Slug: "sembako", Icon: strPtr("🛒"), DisplayOrder: 1},
	{Name: "Voucher", Slug: "voucher", Icon: strPtr("🎫"), DisplayOrder: 2},
	{Name: "Fashion", Slug: "fashion", Icon: strPtr("👕"), DisplayOrder: 3},
	{Name: "Elektronik", Slug: "elektronik", Icon: strPtr("📱"), DisplayOrder: 4},
}

var seedProducts = []seedProduct{
	{"sembako", "Beras Premium 5kg", "Beras pulen kualitas premium", 75000, 82000, 100, model.ProductTypePhysical},
	{"sembako", "Minyak Goreng 2L", "Minyak goreng kemasan pouch", 36000, 0, 100, model.ProductTypePhysical},
	{"sembako", "Gula Pasir 1kg", "Gula pasir putih", 17500, 0, 100, model.ProductTypePhysical},
	{"voucher", "Voucher Pulsa 50rb", "Pulsa semua operator", 51000, 0, 0, model.ProductTypeVoucher},
	{"voucher", "Voucher Game 100rb", "Top up game favorit", 99000, 0, 0, model.ProductTypeVoucher},
	{"fashion", "Kaos Polos Cotton", "Kaos katun combed 30s", 55000, 65000, 100, model.ProductTypePhysical},
	{"elektronik", "Kabel Data USB-C", "Kabel fast charging 1m", 25000, 0, 100, model.ProductTypePhysical},
}

func main() {
	email := flag.String("email", "", "Admin email address")
	password := flag.String("password", "", "Admin password")
	name := flag.String("name", "", "Admin display name")
	withCatalog := flag.Bool("catalog", true, "Seed sample categories and products into an empty catalog")
	flag.Parse()

	if *email == "" {
		*email = getEnv("SEED_EMAIL", "admin@storefront.local")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *name == "" {
		*name = getEnv("SEED_NAME", "Admin")
	}

	if err := run(*email, *password, *name, *withCatalog); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(email, password, name string, withCatalog bool) error {
	dbCfg, logCfg, err := config.LoadDatabase()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(logCfg)

	if password == "" {
		password = "password123"
		logger.Warn().Msg("using default admin password 'password123', change it immediately")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPool(ctx, dbCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	if err := seedAdmin(ctx, repository.NewUserRepository(pool, logger), email, password, name, logger); err != nil {
		return err
	}
	if err := seedSettings(ctx, repository.NewSettingsRepository(pool, logger), logger); err != nil {
		return err
	}
	if err := seedPromo(ctx, repository.NewPromoRepository(pool, logger), logger); err != nil {
		return err
	}
	if withCatalog {
		if err := seedCatalog(ctx, pool, logger); err != nil {
			return err
		}
	}

	logger.Info().Msg("seed completed successfully")
	return nil
}

// seedAdmin creates the back-office account, refreshing its password when
// it already exists.
func seedAdmin(ctx context.Context, users repository.UserRepository, email, password, name string, logger zerolog.Logger) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	user := &model.AdminUser{Email: email, Name: name, PasswordHash: hash, Role: model.RoleAdmin}
	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	logger.Info().Int64("user_id", user.ID).Str("email", email).Msg("admin user ready")
	return nil
}

func seedSettings(ctx context.Context, settings repository.SettingsRepository, logger zerolog.Logger) error {
	existing, err := settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read store settings: %w", err)
	}
	if existing != nil {
		logger.Info().Int64("settings_id", existing.ID).Msg("store settings already exist, skipping")
		return nil
	}

	if _, err := settings.CreateDefault(ctx); err != nil {
		return fmt.Errorf("failed to seed store settings: %w", err)
	}
	logger.Info().Msg("default store settings created")
	return nil
}

func seedPromo(ctx context.Context, promos repository.PromoRepository, logger zerolog.Logger) error {
	const code = "WELCOME10"

	existing, err := promos.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to look up promo code: %w", err)
	}
	if existing != nil {
		logger.Info().Str("promo_code", code).Msg("promo code already exists, skipping")
		return nil
	}

	in := &model.PromoCodeInput{
		Code:          code,
		Description:   "Diskon 10% untuk pelanggan baru (min. Rp 50.000)",
		DiscountType:  model.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		MinPurchase:   decimal.NewFromInt(50000),
	}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("invalid seed promo: %w", err)
	}
	if _, err := promos.Create(ctx, in); err != nil {
		return fmt.Errorf("failed to seed promo code: %w", err)
	}
	return nil
}

// seedCatalog fills an empty catalog with sample categories and products.
func seedCatalog(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	products := repository.NewProductRepository(pool, logger)
	categories := repository.NewCategoryRepository(pool, logger)

	count, err := products.Count(ctx, model.ProductFilter{})
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		logger.Info().Int("products", count).Msg("catalog already has products, skipping")
		return nil
	}

	existing, err := categories.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	bySlug := make(map[string]int64, len(existing))
	for _, c := range existing {
		bySlug[c.Slug] = c.ID
	}

	for i := range seedCategories {
		in := seedCategories[i]
		if _, ok := bySlug[in.Slug]; ok {
			continue
		}
		c, err := categories.Create(ctx, &in)
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", in.Slug, err)
		}
		bySlug[c.Slug] = c.ID
	}

	for _, sp := range seedProducts {
		in := &model.ProductInput{
			Name:        sp.name,
			Slug:        model.Slugify(sp.name),
			Description: sp.description,
			Price:       decimal.NewFromInt(sp.price),
			Stock:       sp.stock,
			Type:        sp.kind,
		}
		if id, ok := bySlug[sp.category]; ok {
			in.CategoryID = &id
		}
		if sp.original > 0 {
			original := decimal.NewFromInt(sp.original)
			in.OriginalPrice = &original
		}
		if err := in.Validate(); err != nil {
			return fmt.Errorf("invalid seed product %s: %w", sp.name, err)
		}
		if _, err := products.Create(ctx, in); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", sp.name, err)
		}
	}

	logger.Info().Int("categories", len(seedCategories)).Int("products", len(seedProducts)).Msg("sample catalog created")
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func strPtr(s string) *string {
	return &s
}
