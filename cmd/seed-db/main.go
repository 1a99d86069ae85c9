// Command seed-db populates a fresh database with an admin account, demo
// sellers with shops, and their product catalogs from a JSON seed file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/craft-market/internal/repository"
)

type seedFile struct {
	Sellers []sellerJSON `json:"sellers"`
}

type sellerJSON struct {
	FullName string     `json:"full_name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Balance  int64      `json:"balance"`
	Shops    []shopJSON `json:"shops"`
}

type shopJSON struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
	Website     string        `json:"website"`
	Products    []productJSON `json:"products"`
}

type productJSON struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Manufacturer string   `json:"manufacturer"`
	Images       []string `json:"images"`
	Price        int64    `json:"price"`
	Discount     int      `json:"discount"`
	Featured     bool     `json:"featured"`
	Type         string   `json:"product_type"`
}

func main() {
	var (
		databaseURL   string
		seedPath      string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/catalog.json", "path to catalog seed JSON file")
	flag.StringVar(&adminEmail, "admin-email", "", "admin account email (or CRAFT_SEED_ADMIN_EMAIL env)")
	flag.StringVar(&adminPassword, "admin-password", "", "admin account password (or CRAFT_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminEmail == "" {
		adminEmail = os.Getenv("CRAFT_SEED_ADMIN_EMAIL")
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("CRAFT_SEED_ADMIN_PASSWORD")
	}
	if adminEmail == "" || adminPassword == "" {
		slog.Error("admin credentials are required: set --admin-email/--admin-password or the CRAFT_SEED_* env vars")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath, adminEmail, adminPassword string) error {
	raw, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}

	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return errors.Wrap(err, "parse seed file")
	}

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if _, err := seedUser(ctx, pool, adminEmail, "Administrator", adminPassword, 0, true); err != nil {
		return errors.Wrap(err, "seed admin")
	}

	// Sellers are independent of each other; seed them concurrently.
	g, gctx := errgroup.WithContext(ctx)
	for _, seller := range seed.Sellers {
		g.Go(func() error {
			return seedSeller(gctx, pool, seller)
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "seed sellers")
	}

	slog.Info("seeded catalog",
		slog.Int("sellers", len(seed.Sellers)),
		slog.String("admin", adminEmail),
	)
	return nil
}

const insertUserSQL = `INSERT INTO users (id, full_name, email, password_hash, balance, role, is_admin)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
RETURNING id`

func seedUser(ctx context.Context, pool *pgxpool.Pool, email, name, password string, balance int64, isAdmin bool) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}

	role := "CUSTOMER"
	if !isAdmin {
		role = "SELLER"
	}

	var id string
	err = pool.QueryRow(ctx, insertUserSQL,
		uuid.New().String(), name, email, string(hash), balance, role, isAdmin,
	).Scan(&id)
	if err != nil {
		return "", errors.Wrap(err, "insert user")
	}
	return id, nil
}

func seedSeller(ctx context.Context, pool *pgxpool.Pool, s sellerJSON) error {
	sellerID, err := seedUser(ctx, pool, s.Email, s.FullName, s.Password, s.Balance, false)
	if err != nil {
		return errors.Wrapf(err, "seller %q", s.Email)
	}

	for _, sh := range s.Shops {
		if err := seedShop(ctx, pool, sellerID, sh); err != nil {
			return errors.Wrapf(err, "shop %q", sh.Name)
		}
	}
	return nil
}

const insertShopSQL = `INSERT INTO shops (id, name, description, location, website, owner_id)
VALUES ($1, $2, $3, $4, $5, $6)`

const insertProductSQL = `INSERT INTO products (id, name, description, manufacturer, images, price, discount, featured, available, product_type, shop_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9, $10)`

func seedShop(ctx context.Context, pool *pgxpool.Pool, ownerID string, sh shopJSON) error {
	shopID := uuid.New().String()
	_, err := pool.Exec(ctx, insertShopSQL,
		shopID, sh.Name, sh.Description, sh.Location, sh.Website, ownerID,
	)
	if err != nil {
		return errors.Wrap(err, "insert shop")
	}

	for _, p := range sh.Products {
		_, err := pool.Exec(ctx, insertProductSQL,
			uuid.New().String(), p.Name, p.Description, p.Manufacturer, p.Images,
			p.Price, p.Discount, p.Featured, p.Type, shopID,
		)
		if err != nil {
			return errors.Wrapf(err, "insert product %q", p.Name)
		}
	}
	return nil
}
