package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "스코어링 설정 관리",
	Long: `스코어링 YAML 설정을 검증하거나 기본값을 출력합니다.

Example:
  go run ./cmd/advisor config default > scoring.yaml
  go run ./cmd/advisor config check scoring.yaml`,
}

var (
	configCheckCmd = &cobra.Command{
		Use:   "check [path]",
		Short: "설정 검증 + 해시 출력",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigCheck,
	}

	configDefaultCmd = &cobra.Command{
		Use:   "default",
		Short: "내장 기본 설정을 YAML로 출력",
		RunE:  runConfigDefault,
	}
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd, configDefaultCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := scoringConfig
	if len(args) == 1 {
		path = args[0]
	}

	cfg, err := scoreconfig.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("❌ %w", err)
	}
	hash, err := scoreconfig.Hash(cfg)
	if err != nil {
		return err
	}

	source := path
	if source == "" {
		source = "built-in default"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✅ Scoring config valid (%s)\n", source)
	fmt.Fprintf(out, "   ID:      %s\n", cfg.Meta.ConfigID)
	fmt.Fprintf(out, "   Version: %s\n", cfg.Meta.Version)
	fmt.Fprintf(out, "   Hash:    %s\n", hash)
	fmt.Fprintf(out, "   Missing portfolio policy: %s\n", cfg.Composite.MissingPortfolioPolicy)
	return nil
}

func runConfigDefault(cmd *cobra.Command, args []string) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(scoreconfig.Default())
}
