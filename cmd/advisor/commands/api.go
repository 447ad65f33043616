package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-advisor/backend/internal/api"
	"github.com/wonny/aegis-advisor/backend/internal/api/handlers"
	"github.com/wonny/aegis-advisor/backend/internal/realtime"
	"github.com/wonny/aegis-advisor/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET    /health                       - Health check
  POST   /api/recommendations          - 단일 종목 평가
  POST   /api/recommendations/batch    - 배치 평가 (입력 순서 유지)
  POST   /api/signals                  - 평가 + 시그널 기록 (X-Portfolio-ID / X-User-ID)
  GET    /api/signals                  - 기록된 시그널 조회
  DELETE /api/signals                  - 스코프 시그널 전체 삭제
  DELETE /api/signals/{id}             - 시그널 삭제
  GET    /api/signals/performance      - 시그널 타입별 승률
  GET    /api/signals/stream           - 시그널 변경 WebSocket 스트림

Example:
  go run ./cmd/advisor api
  go run ./cmd/advisor api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Aegis Advisor API Server ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	apiLog := a.log.WithComponent("api")
	hub := realtime.NewHub(apiLog)
	a.signals.SetNotifier(hub)

	router := api.NewRouter(api.RouterDeps{
		Recommendations: handlers.NewRecommendationHandler(a.svc, apiLog),
		Signals:         handlers.NewSignalHandler(a.svc, apiLog),
		Stream:          handlers.NewStreamHandler(hub, apiLog),
		Limiter:         redis.NewRateLimiter(a.redis, "advisor"),
		Health:          a.health,
		Logger:          apiLog,
	})
	server := api.New(a.cfg, apiLog, router)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Printf("   Config hash: %s\n", a.engine.ConfigHash()[:12])
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return err
	}
	a.log.Info("Server stopped")
	return nil
}

// health reports dependency status for GET /health
func (a *app) health(r *http.Request) map[string]interface{} {
	status := map[string]interface{}{
		"config_hash": a.engine.ConfigHash(),
		"redis":       a.redis.Enabled(),
		"store":       "memory",
	}
	if a.db == nil {
		return status
	}

	status["store"] = "postgres"
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	hs, err := a.db.HealthCheck(ctx)
	if err != nil {
		status["status"] = "degraded"
	}
	status["database"] = hs
	return status
}
