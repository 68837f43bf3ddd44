package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/recopesa/intake-backend/internal/repository/postgres"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func openDB(c *cli.Context) (*sql.DB, error) {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Initialize the schema and seed the database with catalog data",
		Commands: []*cli.Command{
			{
				Name:  "schema",
				Usage: "Create tables, indexes and the ticket sequence",
				Flags: []cli.Flag{
					newDBURLFlag(),
				},
				Action: runSchema,
			},
			{
				Name:  "master",
				Usage: "Seed catalog data (users, suppliers, products)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing catalog seed data",
						Value:   "./data/seeds",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Action: runSeeder,
			},
			{
				Name:  "config",
				Usage: "Set the system-wide price surcharge percentage",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.Float64Flag{
						Name:     "extra-percentage",
						Usage:    "Surcharge applied on top of the base price when a report is approved",
						Required: true,
					},
				},
				Action: runConfig,
			},
			{
				Name:  "all",
				Usage: "Create the schema and seed catalog data",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing catalog seed data",
						Value:   "./data/seeds",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Action: func(c *cli.Context) error {
					if err := runSchema(c); err != nil {
						return fmt.Errorf("error creating schema: %w", err)
					}
					if err := runSeeder(c); err != nil {
						return fmt.Errorf("error seeding catalog data: %w", err)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runSchema(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Println("Creating schema...")
	if err := postgres.InitSchema(context.Background(), db); err != nil {
		return err
	}
	log.Println("Schema ready")
	return nil
}

func runSeeder(c *cli.Context) error {
	dataDir := c.String("data-dir")

	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	// Start a transaction
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Defer a rollback in case anything fails.
	defer tx.Rollback()

	log.Println("Starting database seeding...")

	if err := seedCatalogData(ctx, tx, dataDir); err != nil {
		return fmt.Errorf("failed to seed catalog data: %w", err)
	}

	// Commit the transaction
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

func seedCatalogData(ctx context.Context, tx *sql.Tx, dataDir string) error {
	if err := seedTable(ctx, tx, "users",
		[]string{"first_name", "last_name", "email"},
		filepath.Join(dataDir, "users.csv")); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := seedTable(ctx, tx, "suppliers",
		[]string{"name", "address", "phone", "representative"},
		filepath.Join(dataDir, "suppliers.csv")); err != nil {
		return fmt.Errorf("failed to seed suppliers: %w", err)
	}

	if err := seedTable(ctx, tx, "products",
		[]string{"name", "price_per_quintal"},
		filepath.Join(dataDir, "products.csv")); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	return nil
}

// seedTable inserts every CSV row into the named table. Rows get a generated
// UUID id; CSV columns are matched to table columns by header name, missing
// ones insert as empty strings.
func seedTable(ctx context.Context, tx *sql.Tx, tableName string, columns []string, filePath string) error {
	log.Printf("Seeding %s from %s\n", tableName, filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	headerIdx := make(map[string]int, len(header))
	for i, name := range header {
		headerIdx[strings.TrimSpace(strings.ToLower(name))] = i
	}

	placeholders := make([]string, len(columns)+1)
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (id, %s) VALUES (%s) ON CONFLICT DO NOTHING",
		tableName, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		args := make([]any, 0, len(columns)+1)
		args = append(args, uuid.NewString())
		for _, col := range columns {
			value := ""
			if idx, ok := headerIdx[col]; ok && idx < len(record) {
				value = strings.TrimSpace(record[idx])
			}
			args = append(args, value)
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", tableName, err)
		}
		count++
	}

	log.Printf("Seeded %d rows into %s\n", count, tableName)
	return nil
}

func runConfig(c *cli.Context) error {
	extra := c.Float64("extra-percentage")
	if extra < 0 {
		return fmt.Errorf("extra-percentage must not be negative")
	}

	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(context.Background(), `
		INSERT INTO system_config (id, extra_percentage, updated_at)
		VALUES ('default', $1, NOW())
		ON CONFLICT (id) DO UPDATE SET extra_percentage = EXCLUDED.extra_percentage, updated_at = NOW()`,
		extra)
	if err != nil {
		return fmt.Errorf("failed to update config: %w", err)
	}

	log.Printf("Surcharge set to %.2f%%\n", extra)
	return nil
}
