package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	ruleHeavy = "═══════════════════════════════════════════════════════════"
	ruleLight = "───────────────────────────────────────────────────────────"
)

// printHeader prints a titled section header
func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, ruleHeavy)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, ruleLight)
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRecommendation prints a human-readable summary
func printRecommendation(w io.Writer, rec *contracts.StockRecommendation) {
	printHeader(w, fmt.Sprintf("%s  composite %.1f", rec.Ticker, rec.Composite))

	s := rec.Scores
	fmt.Fprintf(w, "  Fundamental : %5.1f   Technical : %5.1f (%s)\n", s.Fundamental, s.Technical, rec.TechnicalBias)
	fmt.Fprintf(w, "  Analyst     : %5.1f   News      : %5.1f\n", s.Analyst, s.News)
	fmt.Fprintf(w, "  Insider     : %5.1f   Portfolio : %s\n", s.Insider, formatFloat(s.Portfolio, "%5.1f"))
	fmt.Fprintln(w, ruleLight)
	fmt.Fprintf(w, "  Conviction  : %5.1f (%s)\n", rec.Conviction, rec.ConvictionLevel)
	fmt.Fprintf(w, "  Dip         : %5.1f dip=%v quality=%v\n", rec.DipScore, rec.IsDip, rec.DipQualityCheck)
	fmt.Fprintf(w, "  Target      : %s (%s) upside %s%%\n",
		formatFloat(rec.Target.Price, "%.2f"), targetSource(rec.Target.Source), formatFloat(rec.Target.UpsidePct, "%.1f"))
	fmt.Fprintln(w, ruleLight)

	for _, sig := range rec.Signals {
		marker := " "
		if sig.Type == rec.PrimarySignal.Type {
			marker = "★"
		}
		fmt.Fprintf(w, "  %s [%d] %-16s %5.1f  %s\n", marker, sig.Priority, sig.Type, sig.Strength, sig.Title)
	}
	fmt.Fprintln(w, ruleLight)

	b := rec.BuyStrategy
	fmt.Fprintf(w, "  Buy zone    : %.2f ~ %.2f (in zone: %v)  DCA %s %.1f%%  R/R %s\n",
		b.BuyZoneLow, b.BuyZoneHigh, b.InBuyZone, b.DCAMode, b.DCAPct, formatFloat(b.RiskRewardRatio, "%.2f"))
	x := rec.ExitStrategy
	fmt.Fprintf(w, "  Exit        : TP1 %.2f  TP2 %.2f  SL %.2f (-%.1f%%)  %s",
		x.TakeProfit1, x.TakeProfit2, x.StopLoss, x.StopLossPct, x.HoldingPeriod)
	if pct, ok := x.TrimPct.Get(); ok {
		fmt.Fprintf(w, "  trim %.1f%%", pct)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, ruleHeavy)
}

func formatFloat(f contracts.Float, format string) string {
	v, ok := f.Get()
	if !ok {
		return "-"
	}
	return fmt.Sprintf(format, v)
}

func targetSource(src contracts.TargetSource) string {
	if src == contracts.TargetNone {
		return "none"
	}
	return string(src)
}

// padRight pads s to width runes
func padRight(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
