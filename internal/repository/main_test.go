package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const testPostgresImage = "postgres:16-alpine"

// testDatabaseURL is TEST_DATABASE_URL, or a throwaway container when Docker is reachable.
var testDatabaseURL string

func TestMain(m *testing.M) {
	testDatabaseURL = os.Getenv("TEST_DATABASE_URL")

	var stop func()
	if testDatabaseURL == "" {
		url, terminate, err := startPostgres(context.Background())
		if err != nil {
			slog.Warn("postgres container unavailable, ledger tests will be skipped", "error", err)
		} else {
			testDatabaseURL = url
			stop = terminate
		}
	}

	code := m.Run()
	if stop != nil {
		stop()
	}
	os.Exit(code)
}

func startPostgres(ctx context.Context) (url string, terminate func(), err error) {
	// Older providers panic instead of erroring when no Docker host is found.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("start container: %v", r)
		}
	}()

	ctr, err := postgres.Run(ctx, testPostgresImage,
		postgres.WithDatabase("vpnshop"),
		postgres.WithUsername("vpnshop"),
		postgres.WithPassword("vpnshop"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		if ctr != nil {
			_ = ctr.Terminate(ctx)
		}
		return "", nil, fmt.Errorf("start container: %w", err)
	}

	url, err = ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = ctr.Terminate(ctx)
		return "", nil, fmt.Errorf("connection string: %w", err)
	}

	return url, func() {
		if err := ctr.Terminate(ctx); err != nil {
			slog.Warn("failed to terminate postgres container", "error", err)
		}
	}, nil
}
