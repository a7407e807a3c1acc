package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/finlens/backend/internal/scheduler"
	"github.com/wonny/finlens/backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 즉시 실행합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/finlens scheduler start
  go run ./cmd/finlens scheduler run ratio_refresh`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- ratio_refresh: REFRESH_SCHEDULE (REFRESH_SYMBOLS 수집 후 재무비율 산출)
- factor_refresh: 매주 일요일 05:00 (Fama-French 팩터)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
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
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== finlens Scheduler ===")

	a, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	printStats(sched)

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	printJobs(sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	fmt.Printf("Running job: %s\n", jobName)
	if err := sched.RunJob(context.Background(), jobName); err != nil {
		PrintError(err.Error())
		return err
	}

	PrintSuccess("Job completed")
	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	names := sched.GetAllJobs()
	sort.Strings(names)

	fmt.Println("\nRegistered jobs:")
	stats := sched.GetJobStats()
	for _, name := range names {
		fmt.Printf("  - %-16s %s\n", name, stats[name].Schedule)
	}
}

func printStats(sched *scheduler.Scheduler) {
	for name, stat := range sched.GetJobStats() {
		if stat.Runs == 0 {
			continue
		}
		fmt.Printf("📊 %s: %d runs, %.1f%% success\n", name, stat.Runs, stat.SuccessRate*100)
		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s\n", stat.LastFailure.Format("2006-01-02 15:04:05"))
		}
	}
}

func initScheduler() (*app, *scheduler.Scheduler, error) {
	a, err := newApp()
	if err != nil {
		return nil, nil, err
	}

	col := a.collector()
	sched := scheduler.New(a.log)

	toAdd := []scheduler.Job{
		jobs.NewRatioRefreshJob(col, a.ratioService(), a.cfg.Scheduler, a.log),
		jobs.NewFactorRefreshJob(col, a.log),
	}
	for _, job := range toAdd {
		if err := sched.AddJob(job); err != nil {
			a.Close()
			return nil, nil, err
		}
	}

	return a, sched, nil
}
