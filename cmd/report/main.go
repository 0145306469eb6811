package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/andresuchdata/po-analysis/backend-go/internal/cache"
	"github.com/andresuchdata/po-analysis/backend-go/internal/config"
	"github.com/andresuchdata/po-analysis/backend-go/internal/domain"
	"github.com/andresuchdata/po-analysis/backend-go/internal/export"
	"github.com/andresuchdata/po-analysis/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/po-analysis/backend-go/internal/service"
	"github.com/andresuchdata/po-analysis/backend-go/internal/storage"
	"github.com/andresuchdata/po-analysis/backend-go/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

type contextKey string

const dbKey contextKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := postgres.Open("pgx", c.String("db-url"), 1)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Store the database connection in the context
	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFromContext(c *cli.Context) (*postgres.DB, error) {
	db, ok := c.Context.Value(dbKey).(*postgres.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialized")
	}
	return db, nil
}

func main() {
	_ = godotenv.Load()

	// Renderers expect quantities and amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	app := &cli.App{
		Name:  "po-analysis",
		Usage: "Purchase order analysis report",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate the report and write it as json, csv or xlsx",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{Name: "from-date", Usage: "Start of the transaction date range (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "to-date", Usage: "End of the transaction date range (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "company", Usage: "Company to report on"},
					&cli.StringFlag{Name: "purchase-order", Usage: "Single purchase order id"},
					&cli.StringSliceFlag{Name: "status", Usage: "Purchase order status (repeatable)"},
					&cli.StringFlag{Name: "project", Usage: "Project on the order line"},
					&cli.BoolFlag{Name: "group-by-po", Usage: "Roll lines up to one row per purchase order"},
					&cli.StringFlag{Name: "format", Usage: "Output format: json, csv or xlsx", Value: "json"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file, - for stdout", Value: "-"},
					&cli.BoolFlag{Name: "publish", Usage: "Upload csv/xlsx output to the configured object storage"},
				},
				Before: initDB,
				After:  closeDB,
				Action: runGenerate,
			},
			{
				Name:  "seed",
				Usage: "Load <table>.csv fixtures into the analysis record sources",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing the CSV fixtures",
						Value:   "./data/seeds/purchase_analysis",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					db, err := dbFromContext(c)
					if err != nil {
						return err
					}
					return postgres.Seed(c.Context, db, c.String("data-dir"))
				},
			},
			{
				Name:  "exports",
				Usage: "List exports published to object storage",
				Action: func(c *cli.Context) error {
					cfg := config.Load()
					store, err := newObjectStorage(cfg.Storage)
					if err != nil {
						return err
					}
					objects, err := store.ListObjects(c.Context, cfg.Storage.Prefix)
					if err != nil {
						return err
					}
					for _, obj := range objects {
						fmt.Fprintf(c.App.Writer, "%s\t%d\n", obj.Key, obj.Size)
					}
					return nil
				},
			},
			{
				Name:   "migrate",
				Usage:  "Apply the development schema for the analysis record sources",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					db, err := dbFromContext(c)
					if err != nil {
						return err
					}
					return postgres.Migrate(db)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("po-analysis failed")
	}
}

func runGenerate(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	filter, err := filterFromFlags(c)
	if err != nil {
		return err
	}

	cfg := config.Load()
	svc := service.NewPOAnalysisService(
		postgres.NewPORepository(db),
		cache.NewNoopReportCache(),
		service.Options{ChartHeight: cfg.Report.ChartHeight},
	)

	start := time.Now()
	report, err := svc.GenerateReport(c.Context, filter)
	if err != nil {
		return err
	}
	logger.Log.Info().
		Int("rows", len(report.Rows)).
		Dur("elapsed", time.Since(start)).
		Msg("report generated")

	format := strings.ToLower(c.String("format"))
	if format == "json" {
		return writeOutput(c.String("output"), func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		})
	}

	format, err = export.ParseFormat(format)
	if err != nil {
		return err
	}
	groupByPO := filter != nil && filter.GroupByPO
	columns := svc.ExportColumns(groupByPO)

	if c.Bool("publish") {
		store, err := newObjectStorage(cfg.Storage)
		if err != nil {
			return err
		}
		key, err := export.NewPublisher(store, cfg.Storage.Prefix).Publish(c.Context, format, columns, report)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, key)
		return nil
	}

	return writeOutput(c.String("output"), func(w io.Writer) error {
		return export.Write(w, format, columns, report)
	})
}

func newObjectStorage(cfg config.StorageConfig) (storage.ObjectStorage, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("object storage is disabled, set STORAGE_ENABLED=true")
	}
	client, err := storage.NewMinioClient(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func filterFromFlags(c *cli.Context) (*domain.ReportFilter, error) {
	filter := &domain.ReportFilter{
		Company:   c.String("company"),
		OrderID:   c.String("purchase-order"),
		Status:    c.StringSlice("status"),
		Project:   c.String("project"),
		GroupByPO: c.Bool("group-by-po"),
	}

	for name, dst := range map[string]**time.Time{"from-date": &filter.FromDate, "to-date": &filter.ToDate} {
		raw := c.String(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s %q, expected YYYY-MM-DD", name, raw)
		}
		*dst = &t
	}

	if filter.IsEmpty() {
		return nil, nil
	}
	return filter, nil
}

func writeOutput(path string, write func(w io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
