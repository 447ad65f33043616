package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-advisor/backend/internal/s5_signallog"
	"github.com/wonny/aegis-advisor/backend/internal/scheduler"
	"github.com/wonny/aegis-advisor/backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `시그널 로그 백그라운드 작업을 실행합니다.

등록되는 작업:
- signal_outcomes: 평일 장 마감 후 (OUTCOME_SCHEDULE) 1/7/14/30일 후 종가 채우기
- signal_retention: 매주 일요일 새벽 (RETENTION_SCHEDULE) 보관 기간 지난 시그널 삭제

signal_outcomes 는 data.daily_prices 가 필요하므로 DATABASE_URL 이 있을 때만 등록됩니다.

Subcommands:
  start   - 스케줄러 시작 (Ctrl+C 종료)
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/advisor scheduler start
  go run ./cmd/advisor scheduler run signal_outcomes`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobNow,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd, schedulerListCmd, schedulerRunCmd)
}

// newScheduler registers every job the current wiring supports
func newScheduler(a *app) (*scheduler.Scheduler, error) {
	log := a.log.WithComponent("scheduler")
	sched := scheduler.New(log)

	if a.db != nil {
		evaluator := s5_signallog.NewOutcomeEvaluator(
			a.store,
			s5_signallog.NewPriceRepository(a.db.Pool),
			log,
			a.cfg.SignalLog.OutcomeBatchSize,
		)
		if err := sched.AddJob(jobs.NewOutcomeJob(evaluator, a.cfg.Scheduler.OutcomeSchedule, log)); err != nil {
			return nil, err
		}
	} else {
		log.Warn("No database, signal_outcomes job not registered")
	}

	retention := jobs.NewRetentionJob(a.signals, a.cfg.SignalLog.RetentionDays, a.cfg.Scheduler.RetentionSchedule, log)
	if err := sched.AddJob(retention); err != nil {
		return nil, err
	}
	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Aegis Advisor Scheduler ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	sched.Start()
	fmt.Printf("\n✅ Scheduler started with %d jobs\n", len(sched.Jobs()))
	stats := sched.Stats()
	for _, name := range sched.Jobs() {
		fmt.Printf("   %s  %s\n", padRight(name, 18), stats[name].Schedule)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	<-ctx.Done()
	a.log.Info("Stopping scheduler...")
	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(out, "Registered Jobs")
	stats := sched.Stats()
	for _, name := range sched.Jobs() {
		fmt.Fprintf(out, "  %s  %s\n", padRight(name, 18), stats[name].Schedule)
	}
	return nil
}

func runJobNow(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	result, err := sched.RunNow(ctx, args[0])
	if err != nil {
		return fmt.Errorf("❌ %w (attempts: %d)", err, result.Attempts)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s completed in %s\n", result.JobName, result.Duration)
	return nil
}
