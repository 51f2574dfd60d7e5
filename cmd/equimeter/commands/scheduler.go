package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "캐시 워밍 스케줄러",
	Long: `SCHEDULER_WATCHLIST 종목의 스크랩 페이지와 가격 이력을 미리 캐시합니다.

Subcommands:
  start   - 스케줄러 데몬 시작 (SCHEDULER_SCHEDULE)
  run     - 워밍 작업 즉시 1회 실행

Example:
  go run ./cmd/equimeter scheduler start
  go run ./cmd/equimeter scheduler run`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		RunE:  runSchedulerStart,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run",
		Short: "워밍 작업 즉시 실행",
		RunE:  runSchedulerOnce,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Equimeter Scheduler ===")

	a, err := schedulerApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := a.newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	sched.Start()

	fmt.Println("\n✅ Scheduler started")
	for name, st := range sched.Stats() {
		next := "-"
		if st.NextRun != nil {
			next = st.NextRun.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("  - %s (%s) next: %s\n", name, st.Schedule, next)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func runSchedulerOnce(cmd *cobra.Command, args []string) error {
	a, err := schedulerApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := a.newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	result, err := sched.RunNow("cache_warm")
	if err != nil {
		return err
	}

	PrintHeader("cache_warm")
	fmt.Printf("  Symbols   : %d\n", len(a.cfg.Scheduler.Watchlist))
	fmt.Printf("  Attempts  : %d\n", result.Attempts)
	fmt.Printf("  Duration  : %s\n", result.Duration)
	if !result.Success {
		fmt.Printf("  Error     : %s\n", result.Error)
		PrintFooter()
		return fmt.Errorf("cache warm-up failed")
	}
	fmt.Println("  ✅ Completed")
	PrintFooter()
	return nil
}

func schedulerApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if len(cfg.Scheduler.Watchlist) == 0 {
		return nil, fmt.Errorf("SCHEDULER_WATCHLIST is empty")
	}
	return newApp(context.Background(), cfg)
}
