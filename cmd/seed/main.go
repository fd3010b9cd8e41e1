package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
	"github.com/havers0n/my-awesome-project-sub004/internal/ledger"
	"github.com/havers0n/my-awesome-project-sub004/internal/repository/postgres"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the ledger database with catalog and movement data",
		Commands: []*cli.Command{
			{
				Name:  "catalog",
				Usage: "Seed the product catalog from a CSV file",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "file",
						Usage:   "CSV file with columns id,name,shelf_location,category,price",
						Value:   "./data/seeds/products.csv",
						EnvVars: []string{"SEED_CATALOG_FILE"},
					},
				},
				Action: seedCatalog,
			},
			{
				Name:  "movements",
				Usage: "Seed ledger entries from a movement CSV through the engine",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "file",
						Usage:   "CSV file with columns product_id,entry_type,change,timestamp",
						Value:   "./data/seeds/movements.csv",
						EnvVars: []string{"SEED_MOVEMENTS_FILE"},
					},
					&cli.IntFlag{
						Name:  "low-stock-threshold",
						Usage: "Quantity at or below which a product counts as low stock",
						Value: ledger.DefaultLowStockThreshold,
					},
				},
				Action: seedMovements,
			},
			{
				Name:   "download",
				Usage:  "Download seed CSV files from object storage",
				Flags:  append(downloadFlags(), &cli.StringFlag{Name: "dest", Usage: "Local directory for downloaded files", Value: "./data/seeds"}),
				Action: downloadSeeds,
			},
			{
				Name:   "upload",
				Usage:  "Upload local seed files to object storage",
				Flags:  append(downloadFlags(), &cli.StringFlag{Name: "src", Usage: "Local directory holding the seed files", Value: "./data/seeds"}),
				Action: uploadSeeds,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDB(c *cli.Context) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func seedCatalog(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	writer := postgres.NewCatalogWriter(postgres.Wrap(db))

	file, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	colMap := columnMap(header)
	for _, col := range []string{"id", "name"} {
		if _, ok := colMap[col]; !ok {
			return fmt.Errorf("missing required column: %s", col)
		}
	}

	ctx := context.Background()
	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		price := 0.0
		if raw := fieldValue(record, colMap, "price"); raw != "" {
			price, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", raw, err)
			}
		}

		product := &domain.Product{
			ID:            fieldValue(record, colMap, "id"),
			Name:          fieldValue(record, colMap, "name"),
			ShelfLocation: fieldValue(record, colMap, "shelf_location"),
			Category:      fieldValue(record, colMap, "category"),
			Price:         price,
		}

		if err := writer.SaveProduct(ctx, product); err != nil {
			return fmt.Errorf("failed to upsert product %s: %w", product.ID, err)
		}
		count++
	}

	log.Printf("Successfully seeded %d products\n", count)
	return nil
}

func seedMovements(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	store := postgres.NewLedgerStore(postgres.Wrap(db))
	engine := ledger.NewEngine(store, ledger.Config{
		LowStockThreshold: c.Int("low-stock-threshold"),
	})

	file, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open movements file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	colMap := columnMap(header)
	for _, col := range []string{"product_id", "entry_type", "change"} {
		if _, ok := colMap[col]; !ok {
			return fmt.Errorf("missing required column: %s", col)
		}
	}

	ctx := context.Background()
	appended, skipped := 0, 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		change, err := strconv.Atoi(fieldValue(record, colMap, "change"))
		if err != nil {
			log.Printf("line %d: bad change value, skipping: %v", line, err)
			skipped++
			continue
		}

		var ts time.Time
		if raw := fieldValue(record, colMap, "timestamp"); raw != "" {
			ts, err = time.Parse(time.RFC3339, raw)
			if err != nil {
				log.Printf("line %d: bad timestamp, skipping: %v", line, err)
				skipped++
				continue
			}
		}

		entryType := domain.EntryType(strings.ToLower(fieldValue(record, colMap, "entry_type")))
		if _, err := engine.Append(ctx, fieldValue(record, colMap, "product_id"), entryType, change, ts); err != nil {
			log.Printf("line %d: append failed, skipping: %v", line, err)
			skipped++
			continue
		}
		appended++

		if appended%5000 == 0 {
			log.Printf("Seeded %d ledger entries...", appended)
		}
	}

	log.Printf("Successfully seeded %d ledger entries (%d skipped)\n", appended, skipped)
	return nil
}

func columnMap(header []string) map[string]int {
	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return colMap
}

func fieldValue(record []string, colMap map[string]int, column string) string {
	idx, ok := colMap[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
