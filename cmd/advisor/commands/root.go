package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	scoringConfig string
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Aegis Advisor - 종목 추천 스코어링 엔진",
	Long: `Aegis Advisor CLI

펀더멘털 / 기술적 / 애널리스트 / 뉴스 / 내부자 / 포트폴리오 신호를
0-100 종합 점수, 확신도, 저점 매수 판단, 시그널, 매수/청산 전략으로 변환.

Usage:
  go run ./cmd/advisor [command]

Examples:
  go run ./cmd/advisor score inputs.json
  go run ./cmd/advisor api
  go run ./cmd/advisor signals performance --portfolio 42
  go run ./cmd/advisor scheduler start
  go run ./cmd/advisor config check scoring.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&scoringConfig, "scoring-config", "", "scoring YAML (default: SCORING_CONFIG or built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
