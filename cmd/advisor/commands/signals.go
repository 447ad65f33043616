package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/s5_signallog"
)

// signalsCmd represents the signals command
var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "시그널 로그 관리",
	Long: `포트폴리오 또는 리서치 사용자 스코프의 시그널 로그를 조회/정리합니다.

Subcommands:
  list         - 최근 시그널 조회
  performance  - 시그널 타입별 1/7/14/30일 승률
  clear        - 스코프 시그널 전체 삭제

Example:
  go run ./cmd/advisor signals list --portfolio 42
  go run ./cmd/advisor signals performance --user alice`,
}

var (
	signalsListCmd = &cobra.Command{
		Use:   "list",
		Short: "최근 시그널 조회",
		RunE:  runSignalsList,
	}

	signalsPerformanceCmd = &cobra.Command{
		Use:   "performance",
		Short: "시그널 타입별 승률",
		RunE:  runSignalsPerformance,
	}

	signalsClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "스코프 시그널 전체 삭제",
		RunE:  runSignalsClear,
	}
)

var (
	signalsScope scopeFlags
	signalsLimit int
)

func init() {
	rootCmd.AddCommand(signalsCmd)
	signalsCmd.AddCommand(signalsListCmd, signalsPerformanceCmd, signalsClearCmd)

	signalsCmd.PersistentFlags().StringVar(&signalsScope.portfolio, "portfolio", "", "portfolio id")
	signalsCmd.PersistentFlags().StringVar(&signalsScope.user, "user", "", "research user id")
	signalsListCmd.Flags().IntVar(&signalsLimit, "limit", 20, "max rows")
}

func runSignalsList(cmd *cobra.Command, args []string) error {
	scope, err := signalsScope.scope()
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	entries, err := a.signals.ListSignals(ctx, scope, signalsLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(out, fmt.Sprintf("Signals (%s) - %d rows", scope.Key(), len(entries)))
	for _, e := range entries {
		fmt.Fprintf(out, "  %s  %s %s %5.1f  composite %5.1f  @ %s   1D %s  7D %s  14D %s  30D %s\n",
			e.CreatedAt.Format("2006-01-02"),
			padRight(e.Ticker, 6),
			padRight(string(e.SignalType), 16),
			e.SignalStrength,
			e.CompositeScore,
			formatFloat(e.PriceAtSignal, "%.2f"),
			formatFloat(e.PriceAfter1D, "%.2f"),
			formatFloat(e.PriceAfter7D, "%.2f"),
			formatFloat(e.PriceAfter14D, "%.2f"),
			formatFloat(e.PriceAfter30D, "%.2f"),
		)
	}
	return nil
}

func runSignalsPerformance(cmd *cobra.Command, args []string) error {
	scope, err := signalsScope.scope()
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	perf, err := a.signals.Performance(ctx, scope)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(out, fmt.Sprintf("Signal Performance (%s)", scope.Key()))
	fmt.Fprintf(out, "  %s %6s", padRight("SIGNAL", 16), "TOTAL")
	for _, p := range contracts.OutcomePeriods {
		fmt.Fprintf(out, " %10s", fmt.Sprintf("WIN %dD", p))
	}
	fmt.Fprintln(out)

	for _, sp := range perf {
		fmt.Fprintf(out, "  %s %6d", padRight(string(sp.SignalType), 16), sp.Total)
		for _, p := range contracts.OutcomePeriods {
			rate := s5_signallog.CalculateWinRate(sp, p)
			fmt.Fprintf(out, " %10s", formatFloat(rate, "%.0f%%"))
		}
		fmt.Fprintln(out)
	}
	return nil
}

func runSignalsClear(cmd *cobra.Command, args []string) error {
	scope, err := signalsScope.scope()
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	n, err := a.signals.ClearAllSignals(ctx, scope)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Deleted %d signals (%s)\n", n, scope.Key())
	return nil
}
