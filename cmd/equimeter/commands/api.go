package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/equimeter/internal/api"
	"github.com/wonny/equimeter/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- 시세/재무/뉴스 조회 엔드포인트 제공
- 지표 및 Equimeter 종합 점수 제공
- SCHEDULER_ENABLED=true 이면 캐시 워밍 스케줄러 동시 실행

Example:
  go run ./cmd/equimeter api
  go run ./cmd/equimeter api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default $PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Equimeter API Server ===")

	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Wire dependencies
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.logger

	// 3. Handlers
	h := api.Handlers{
		Stock:      handlers.NewStockHandler(a.yahoo, a.yahoo, a.keyStats, log),
		StockList:  handlers.NewStockListHandler(a.resolver, log),
		Data:       handlers.NewDataHandler(a.screener, a.screener, a.screener, log),
		Indicators: handlers.NewIndicatorHandler(a.builder, log),
		News:       handlers.NewNewsHandler(a.news, log),
		QuoteStream: handlers.NewQuoteStreamHandler(a.yahoo, cfg.Yahoo.QuotePushEvery,
			cfg.CORSOrigins, log),
	}

	// 4. Router + server
	router := api.NewRouter(h, cfg.CORSOrigins, log)
	server := api.New(cfg, log, router)

	// 5. Optional cache warm-up scheduler
	if cfg.Scheduler.Enabled {
		sched, err := a.newScheduler()
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nKey endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /search?query=tata")
	fmt.Println("  GET  /equimeter?symbol=TCS")
	fmt.Println("  GET  /ws/quote?symbol=TCS")
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
