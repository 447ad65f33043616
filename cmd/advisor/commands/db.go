package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-advisor/backend/internal/s5_signallog"
	"github.com/wonny/aegis-advisor/backend/pkg/config"
	"github.com/wonny/aegis-advisor/backend/pkg/database"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "PostgreSQL 연결/스키마 관리",
	Long: `데이터베이스 연결을 테스트하고 시그널 로그 스키마를 적용합니다.

Subcommands:
  ping     - 연결 테스트 + 풀 통계
  migrate  - signals.signal_log 스키마 적용 (멱등)

Example:
  go run ./cmd/advisor db ping
  go run ./cmd/advisor db migrate`,
}

var (
	dbPingCmd = &cobra.Command{
		Use:   "ping",
		Short: "연결 테스트",
		RunE:  runDBPing,
	}

	dbMigrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "시그널 로그 스키마 적용",
		RunE:  runDBMigrate,
	}
)

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbPingCmd, dbMigrateCmd)
}

// connectDB loads config and opens the pool without the rest of the app
func connectDB(ctx context.Context) (*database.DB, error) {
	fmt.Println("Loading configuration...")
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("❌ Failed to load config: %w", err)
	}
	if !cfg.HasDatabase() {
		return nil, fmt.Errorf("❌ DATABASE_URL is not set")
	}
	fmt.Printf("✅ Config loaded (ENV: %s)\n", cfg.Env)
	fmt.Printf("   Database URL: %s\n\n", maskPassword(cfg.Database.URL))

	fmt.Println("Connecting to database...")
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	fmt.Println("✅ Database connection established")
	return db, nil
}

func runDBPing(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Aegis Advisor Database Connection Test ===")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("Running health check...")
	health, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}
	fmt.Printf("✅ Healthy (response time: %s)\n\n", health.ResponseTime)

	stats := health.Stats
	fmt.Println("Connection Pool Statistics:")
	fmt.Printf("   Total Connections:    %d\n", stats.TotalConns)
	fmt.Printf("   Acquired Connections: %d\n", stats.AcquiredConns)
	fmt.Printf("   Idle Connections:     %d\n", stats.IdleConns)
	fmt.Printf("   Max Connections:      %d\n", stats.MaxConns)
	return nil
}

func runDBMigrate(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Aegis Advisor Schema Migration ===")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := s5_signallog.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("❌ Migration failed: %w", err)
	}
	fmt.Println("✅ signals.signal_log schema is up to date")
	return nil
}
