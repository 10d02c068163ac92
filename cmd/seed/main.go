// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"retailcore/internal/core/id"
	"retailcore/internal/infrastructure/storage/postgres"
	"retailcore/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	tenantID := resolveTenantID(log)

	if err := seedAdminUser(ctx, pool, log, tenantID); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log, tenantID); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// resolveTenantID reads COMPANY_ID or generates a fresh tenant identifier.
func resolveTenantID(log *logger.Logger) id.ID {
	if raw := os.Getenv("COMPANY_ID"); raw != "" {
		tenantID, err := id.Parse(raw)
		if err != nil {
			log.Fatalw("invalid COMPANY_ID", "value", raw, "error", err)
		}
		return tenantID
	}

	tenantID := id.New()
	log.Infow("generated new tenant id; pass it as X-Tenant-ID and COMPANY_ID", "company_id", tenantID)
	return tenantID
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger, tenantID id.ID) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@example.com"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.QueryRow(ctx,
		`SELECT id FROM sys_users WHERE company_id = $1 AND email = $2 AND deleted_at IS NULL`,
		tenantID, adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now().UTC()

	_, err = pool.Exec(ctx, `
		INSERT INTO sys_users (
			id, company_id, email, password_hash, first_name, last_name,
			role, is_admin, is_active, created_at, updated_at, version
		)
		VALUES ($1, $2, $3, $4, 'System', 'Admin', 'admin', true, true, $5, $5, 1)
	`, userID, tenantID, adminEmail, string(passwordHash), now)
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", userID)
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger, tenantID id.ID) error {
	log.Info("seeding demo data...")

	// Suppliers
	suppliers := []struct {
		code  string
		name  string
		taxID string
		terms int
	}{
		{"SU-00001", "Acme Wholesale", "90-1234567", 30},
		{"SU-00002", "Northline Distribution", "90-7654321", 14},
		{"SU-00003", "Pacific Imports", "91-0000123", 0},
	}

	for _, s := range suppliers {
		_, err := pool.Exec(ctx, `
			INSERT INTO cat_suppliers (id, company_id, code, name, tax_id, payment_terms_days, deletion_mark, version)
			VALUES ($1, $2, $3, $4, $5, $6, false, 1)
			ON CONFLICT (company_id, code) WHERE deletion_mark = FALSE DO NOTHING
		`, id.New(), tenantID, s.code, s.name, s.taxID, s.terms)
		if err != nil {
			log.Warnw("failed to seed supplier", "name", s.name, "error", err)
		}
	}

	// Customers
	customers := []struct {
		code  string
		name  string
		email string
	}{
		{"CU-00001", "Main Street Hardware", "orders@mainsthardware.example"},
		{"CU-00002", "Lakeside Grocers", "purchasing@lakeside.example"},
	}

	for _, c := range customers {
		_, err := pool.Exec(ctx, `
			INSERT INTO cat_customers (id, company_id, code, name, email, deletion_mark, version)
			VALUES ($1, $2, $3, $4, $5, false, 1)
			ON CONFLICT (company_id, code) WHERE deletion_mark = FALSE DO NOTHING
		`, id.New(), tenantID, c.code, c.name, c.email)
		if err != nil {
			log.Warnw("failed to seed customer", "name", c.name, "error", err)
		}
	}

	// Products go in bulk through the COPY protocol.
	products := []struct {
		code  string
		name  string
		sku   string
		cost  string
		price string
	}{
		{"PR-00001", "Copy Paper A4 500 Sheets", "PAP-A4", "3.20", "5.99"},
		{"PR-00002", "Ballpoint Pen Blue", "PEN-BLU", "0.35", "1.25"},
		{"PR-00003", "Desktop Stapler", "STP-001", "4.10", "8.50"},
		{"PR-00004", "Paper Clips 28mm 100pk", "CLP-028", "0.55", "1.75"},
		{"PR-00005", "Lever Arch Folder", "FOL-REG", "1.80", "3.95"},
		{"PR-00006", "Thermal Receipt Roll", "RCT-080", "0.90", "2.10"},
	}

	columns := []string{
		"id", "company_id", "code", "name", "sku",
		"default_cost", "default_price", "track_inventory",
		"deletion_mark", "version",
	}

	rows := make([][]any, 0, len(products))
	for _, p := range products {
		cost, err := decimal.NewFromString(p.cost)
		if err != nil {
			return fmt.Errorf("parse cost for %s: %w", p.code, err)
		}
		price, err := decimal.NewFromString(p.price)
		if err != nil {
			return fmt.Errorf("parse price for %s: %w", p.code, err)
		}
		rows = append(rows, []any{
			id.New(), tenantID, p.code, p.name, p.sku,
			cost, price, true,
			false, 1,
		})
	}

	txManager := postgres.NewTxManager(pool)
	inserter := postgres.NewBatchInserter(txManager)

	err := txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		inserted, err := inserter.CopyFromSlice(txCtx, "cat_products", columns, rows)
		if err != nil {
			return err
		}
		log.Infow("products seeded", "count", inserted)
		return nil
	})
	if err != nil {
		// COPY has no ON CONFLICT; rerunning the seeder trips the unique code index
		log.Warnw("failed to bulk insert products (already seeded?)", "error", err)
	}

	log.Info("demo data seeded successfully")
	return nil
}
