package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"trade-route-service/internal/adapters/repositories"
	"trade-route-service/internal/api/dto"
	"trade-route-service/internal/app"
	"trade-route-service/internal/config"
	"trade-route-service/internal/platform/db"
	"trade-route-service/internal/platform/obs"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var initCmd = &cli.Command{
	Name:  "init",
	Usage: "Create the PostGIS schema",
	Action: func(c *cli.Context) error {
		return withDB(c.Context, func(_ *config.Config, conn *sql.DB) error {
			logrus.Info("Initializing database schema...")
			if err := repositories.InitSchema(c.Context, conn); err != nil {
				return err
			}
			logrus.Info("Schema ready.")
			return nil
		})
	},
}

var seedCmd = &cli.Command{
	Name:  "seed",
	Usage: "Load items, warehouses and stock from a JSON file",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "file",
			Usage: "seed file (defaults to SEED_PATH)",
		},
	},
	Action: func(c *cli.Context) error {
		return withDB(c.Context, func(cfg *config.Config, conn *sql.DB) error {
			path := c.String("file")
			if path == "" {
				path = cfg.SeedPath
			}

			logrus.WithField("file", path).Info("Seeding database...")
			if err := repositories.SeedFromJSON(c.Context, conn, path); err != nil {
				return err
			}
			logrus.Info("Seeding complete.")
			return nil
		})
	},
}

var optimizeCmd = &cli.Command{
	Name:  "optimize",
	Usage: "Run one optimization against the database and print the JSON result",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "start", Required: true, Usage: "start point as lat,lon"},
		&cli.StringFlag{Name: "end", Required: true, Usage: "end point as lat,lon"},
		&cli.Float64Flag{Name: "t-max", Value: 8, Usage: "maximum trip time in hours"},
		&cli.Float64Flag{Name: "cost", Value: 0.001, Usage: "transport cost per km per kg"},
		&cli.Float64Flag{Name: "max-weight", Value: 10000, Usage: "truck capacity in kg"},
		&cli.Float64Flag{Name: "curr-weight", Value: 0, Usage: "current truck load in kg"},
	},
	Action: func(c *cli.Context) error {
		start, err := parseLatLon(c.String("start"))
		if err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		end, err := parseLatLon(c.String("end"))
		if err != nil {
			return fmt.Errorf("--end: %w", err)
		}

		req := dto.OptimizeRequest{
			StartLocation:     start,
			EndLocation:       end,
			TMax:              c.Float64("t-max"),
			CostPerKmPerKg:    c.Float64("cost"),
			MaxTruckWeightKg:  c.Float64("max-weight"),
			CurrTruckWeightKg: c.Float64("curr-weight"),
		}
		if err := req.Validate(); err != nil {
			return err
		}

		return withDB(c.Context, func(cfg *config.Config, conn *sql.DB) error {
			stack, err := app.Build(c.Context, cfg, conn)
			if err != nil {
				return err
			}
			defer stack.Close()

			res, err := stack.Optimizer.Optimize(c.Context, req.TripRequest())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(dto.NewOptimizeResponse(res))
		})
	},
}

// withDB loads configuration, opens the database and runs fn.
func withDB(ctx context.Context, fn func(cfg *config.Config, conn *sql.DB) error) error {
	cfg, dotenv, err := config.Load()
	if err != nil {
		return err
	}

	// Logs go to stderr so optimize output stays valid JSON.
	log, err := obs.Configure(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	log.SetOutput(os.Stderr)

	if !dotenv {
		log.Debug("No .env file found (using environment variables)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(cfg, conn)
}

// parseLatLon parses "lat,lon".
func parseLatLon(s string) ([]float64, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return nil, fmt.Errorf("expected lat,lon, got %q", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	return []float64{lat, lon}, nil
}
