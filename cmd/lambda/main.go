// Command lambda runs BizSight CSV imports as an AWS Lambda function.
//
// The event carries the CSV inline:
//
//	{"userId": "6f1c...", "kind": "inventory", "csvData": "name,price,stock,category\n..."}
//
// and the function returns the import report. Configuration comes from the
// same environment variables as the server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/JonMunkholm/bizsight/internal/cache"
	"github.com/JonMunkholm/bizsight/internal/config"
	"github.com/JonMunkholm/bizsight/internal/core"
	"github.com/JonMunkholm/bizsight/internal/logging"
	"github.com/JonMunkholm/bizsight/internal/store"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// ImportEvent is the Lambda payload.
type ImportEvent struct {
	UserID   string `json:"userId"`
	Kind     string `json:"kind"`
	FileName string `json:"fileName,omitempty"`
	CSVData  string `json:"csvData"`
}

var service *core.Service

func init() {
	// Local runs read .env; in AWS the file is absent and this is a no-op.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, "json")

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	var pc cache.ProductCache = cache.Nop{}
	if cfg.Redis.URL != "" {
		if rc, err := cache.NewRedis(ctx, cfg.Redis.URL, cfg.Redis.TTL); err != nil {
			slog.Warn("product cache disabled", "error", err)
		} else {
			pc = rc
		}
	}

	service = core.NewService(st, pc, cfg)
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Store.Driver == config.DriverMemory {
		return store.NewMemory(), nil
	}
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	// One invocation at a time per container.
	poolConfig.MaxConns = 2
	poolConfig.MinConns = 0
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return store.NewPostgres(pool), nil
}

func handler(ctx context.Context, ev ImportEvent) (core.ImportReport, error) {
	userID, err := uuid.Parse(ev.UserID)
	if err != nil {
		return core.ImportReport{}, fmt.Errorf("invalid userId: %w", err)
	}
	kind, ok := core.ParseImportKind(ev.Kind)
	if !ok {
		return core.ImportReport{}, fmt.Errorf("invalid kind %q: want inventory or sales", ev.Kind)
	}
	if ev.CSVData == "" {
		return core.ImportReport{}, errors.New("no csvData found in the payload")
	}

	name := ev.FileName
	if name == "" {
		name = "lambda-" + string(kind) + ".csv"
	}
	ctx = logging.WithUserID(ctx, userID.String())

	return service.Import(ctx, core.ImportRequest{
		UserID:   userID,
		Kind:     kind,
		FileName: name,
		Body:     strings.NewReader(ev.CSVData),
	})
}

func main() {
	lambda.Start(handler)
}
