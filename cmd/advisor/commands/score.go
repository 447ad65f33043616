package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/service"
)

var scoreCmd = &cobra.Command{
	Use:   "score [inputs.json|-]",
	Short: "입력 파일로 추천 산출",
	Long: `ScoreInputs JSON (단일 객체 또는 배열)을 평가합니다.

--log 를 주면 주 시그널을 시그널 로그에 기록합니다 (--portfolio 또는 --user 필요).

Example:
  go run ./cmd/advisor score testdata/aapl.json
  cat batch.json | go run ./cmd/advisor score - --json
  go run ./cmd/advisor score aapl.json --log --portfolio 42`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

var (
	scoreJSON  bool
	scoreLog   bool
	scoreScope scopeFlags
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "print full recommendation JSON")
	scoreCmd.Flags().BoolVar(&scoreLog, "log", false, "record the primary signal")
	scoreCmd.Flags().StringVar(&scoreScope.portfolio, "portfolio", "", "portfolio id for --log")
	scoreCmd.Flags().StringVar(&scoreScope.user, "user", "", "research user id for --log")
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var scope contracts.Scope
	if scoreLog {
		s, err := scoreScope.scope()
		if err != nil {
			return err
		}
		scope = s
	}

	inputs, err := readInputs(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	recs, err := a.svc.RecommendBatch(ctx, inputs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i := range recs {
		if scoreJSON {
			if err := printJSON(out, &recs[i]); err != nil {
				return err
			}
		} else {
			printRecommendation(out, &recs[i])
		}
	}

	if !scoreLog {
		return nil
	}
	return logSignals(ctx, out, a.svc, scope, inputs, a.cfg.SignalLog.DedupWindowDays)
}

// logSignals records each input's primary signal through the service,
// which also drops the scope's cached performance
func logSignals(ctx context.Context, out io.Writer, svc *service.RecommendationService, scope contracts.Scope, inputs []contracts.ScoreInputs, dedupDays int) error {
	for _, in := range inputs {
		rec, entry, err := svc.RecommendAndLog(ctx, scope, in, "")
		if err != nil {
			return fmt.Errorf("log signal for %s: %w", in.Ticker, err)
		}
		if entry == nil {
			fmt.Fprintf(out, "  ↺ %s %s already logged within %d days\n", rec.Ticker, rec.PrimarySignal.Type, dedupDays)
		} else {
			fmt.Fprintf(out, "  ✅ logged %s %s (%s)\n", rec.Ticker, entry.SignalType, entry.ID)
		}
	}
	return nil
}

// readInputs accepts a single ScoreInputs object or an array of them
func readInputs(path string, stdin io.Reader) ([]contracts.ScoreInputs, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read inputs: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var batch []contracts.ScoreInputs
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("decode inputs: %w", err)
		}
		return batch, nil
	}

	var single contracts.ScoreInputs
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("decode inputs: %w", err)
	}
	return []contracts.ScoreInputs{single}, nil
}
