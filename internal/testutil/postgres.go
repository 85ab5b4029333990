package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ozcanhakn/kanban-app/internal/database"
)

const (
	pgUser     = "kanban"
	pgPassword = "kanban"
	pgDatabase = "kanban"
)

var (
	pgOnce      sync.Once
	pgContainer *postgres.PostgresContainer
	pgHost      string
	pgPort      string
	pgErr       error
	dbCounter   atomic.Int64
)

func startPostgres() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	defer func() {
		// testcontainers panics when no docker provider can be found.
		if r := recover(); r != nil {
			pgErr = fmt.Errorf("starting postgres container: %v", r)
		}
	}()

	c, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase(pgDatabase),
		postgres.WithUsername(pgUser),
		postgres.WithPassword(pgPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	if err != nil {
		pgErr = fmt.Errorf("starting postgres container: %w", err)
		return
	}
	pgContainer = c

	if pgHost, err = c.Host(ctx); err != nil {
		pgErr = fmt.Errorf("resolving container host: %w", err)
		return
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		pgErr = fmt.Errorf("resolving container port: %w", err)
		return
	}
	pgPort = port.Port()
}

// TerminatePostgres stops the shared container. Call it from TestMain after m.Run.
func TerminatePostgres() {
	if pgContainer != nil {
		_ = pgContainer.Terminate(context.Background())
	}
}

func dsn(name string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pgHost, pgPort, pgUser, pgPassword, name)
}

// NewTestDB returns a migrated gorm handle on a fresh database inside a shared
// postgres container. The test is skipped when docker is unavailable.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres-backed test in short mode")
	}

	pgOnce.Do(startPostgres)
	if pgErr != nil {
		t.Skipf("postgres unavailable: %v", pgErr)
	}

	admin, err := database.Open(dsn(pgDatabase), zap.NewNop())
	if err != nil {
		t.Fatalf("connecting to admin database: %v", err)
	}
	defer admin.Close()

	name := fmt.Sprintf("test_%d_%s", dbCounter.Add(1), strings.ToLower(sanitize(t.Name())))
	if len(name) > 60 {
		name = name[:60]
	}
	if err := admin.GetDB().Exec(fmt.Sprintf(`CREATE DATABASE "%s"`, name)).Error; err != nil {
		t.Fatalf("creating database %s: %v", name, err)
	}

	svc, err := database.Open(dsn(name), zap.NewNop())
	if err != nil {
		t.Fatalf("connecting to %s: %v", name, err)
	}
	if err := svc.Migrate(); err != nil {
		t.Fatalf("migrating %s: %v", name, err)
	}
	t.Cleanup(func() {
		svc.Close()
	})
	return svc.GetDB()
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
