// Command seed creates the tenant row and the default tax rates.
// Running it again is a no-op once the tenant exists.
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"facturo/internal/config"
	"facturo/internal/domain"
	"facturo/internal/repository/postgres"
)

var defaultTaxRates = []struct {
	name string
	rate string
}{
	{"General", "21"},
	{"Reduced", "10"},
	{"Super-reduced", "4"},
	{"Exempt", "0"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	existing, err := postgres.NewTenantRepo(db).GetSingle(ctx)
	switch {
	case err == nil:
		log.Printf("tenant %s (%s) already present, nothing to seed", existing.Name, existing.ID)
		return nil
	case !errors.Is(err, domain.ErrTenantNotFound):
		return fmt.Errorf("look up tenant: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	tenant := &domain.Tenant{
		Name:     envOr("FACTURO_SEED_TENANT_NAME", "My Business"),
		TaxID:    os.Getenv("FACTURO_SEED_TENANT_TAX_ID"),
		Email:    envOr("FACTURO_SEED_TENANT_EMAIL", cfg.Email.FromAddress),
		Address:  os.Getenv("FACTURO_SEED_TENANT_ADDRESS"),
		Currency: envOr("FACTURO_SEED_TENANT_CURRENCY", "EUR"),
	}
	if err := postgres.NewTenantRepo(tx).Create(ctx, tenant); err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}

	rates := postgres.NewTaxRateRepo(tx)
	for _, r := range defaultTaxRates {
		rate := &domain.TaxRate{
			TenantID:    tenant.ID,
			Name:        r.name,
			RatePercent: decimal.RequireFromString(r.rate),
			IsActive:    true,
		}
		if err := rates.Create(ctx, rate); err != nil {
			return fmt.Errorf("create tax rate %q: %w", r.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Printf("seeded tenant %s (%s) with %d tax rates", tenant.Name, tenant.ID, len(defaultTaxRates))
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
