package contracts

import (
	"errors"
	"fmt"
	"strings"
)

// ScoreInputs is the immutable per-ticker bundle consumed by the engine
// ⭐ SSOT: 데이터 수집 계층 → 스코어링 엔진 입력
type ScoreInputs struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name,omitempty"`

	Fundamentals Optional[FundamentalMetrics]  `json:"fundamentals"`
	Technicals   Optional[TechnicalIndicators] `json:"technicals"`
	Analyst      Optional[AnalystData]         `json:"analyst"`
	News         Optional[NewsStats]           `json:"news"`
	Insider      Optional[InsiderSentiment]    `json:"insider"`
	Position     Optional[PositionContext]     `json:"position"` // 보유 종목일 때만
}

// FundamentalMetrics holds valuation and quality metrics (percentages as 0-100)
type FundamentalMetrics struct {
	PE            Float `json:"pe"`
	ROE           Float `json:"roe"`            // %
	NetMargin     Float `json:"net_margin"`     // %
	RevenueGrowth Float `json:"revenue_growth"` // % YoY
	DebtToEquity  Float `json:"debt_to_equity"` // ratio
	RevenueCAGR5Y Float `json:"revenue_cagr_5y"`
	EarningsBeats Float `json:"earnings_beats"` // beats in the last 4 quarters
}

// TechnicalIndicators holds the latest indicator values
// Historical series for charting stay with the data layer.
type TechnicalIndicators struct {
	Price Float `json:"price"`

	RSI14         Float `json:"rsi14"`
	MACD          Float `json:"macd"`
	MACDSignal    Float `json:"macd_signal"`
	MACDHistogram Float `json:"macd_histogram"`

	BollingerPosition Float `json:"bollinger_position"` // %B: 0 = lower band, 1 = upper band

	ADX     Float `json:"adx"`
	PlusDI  Float `json:"plus_di"`
	MinusDI Float `json:"minus_di"`

	StochK Float `json:"stoch_k"`
	StochD Float `json:"stoch_d"`

	SMA50   Float `json:"sma50"`
	SMA200  Float `json:"sma200"`
	High52W Float `json:"high_52w"`
	Low52W  Float `json:"low_52w"`

	SupportPrice    Float `json:"support_price"`
	ResistancePrice Float `json:"resistance_price"`
}

// AnalystData holds rating counts and consensus
type AnalystData struct {
	StrongBuy  int `json:"strong_buy"`
	Buy        int `json:"buy"`
	Hold       int `json:"hold"`
	Sell       int `json:"sell"`
	StrongSell int `json:"strong_sell"`

	NumberOfAnalysts Optional[int] `json:"number_of_analysts"`
	TargetPrice      Float         `json:"target_price"`
	ConsensusScore   Float         `json:"consensus_score"` // -2 ~ +2
}

// TotalRatings returns the number of individual ratings
func (a AnalystData) TotalRatings() int {
	return a.StrongBuy + a.Buy + a.Hold + a.Sell + a.StrongSell
}

// Consensus returns the weighted rating average on a -2..+2 scale.
// Rating counts win over a precomputed ConsensusScore.
func (a AnalystData) Consensus() Float {
	total := a.TotalRatings()
	if total == 0 {
		return a.ConsensusScore
	}

	weighted := 2*a.StrongBuy + a.Buy - a.Sell - 2*a.StrongSell
	return F(float64(weighted) / float64(total))
}

// AnalystCount returns NumberOfAnalysts, falling back to the rating total
func (a AnalystData) AnalystCount() int {
	if n, ok := a.NumberOfAnalysts.Get(); ok {
		return n
	}
	return a.TotalRatings()
}

// NewsStats is the per-ticker news sentiment aggregate
type NewsStats struct {
	AvgSentiment float64 `json:"avg_sentiment"` // -1 ~ 1
	ArticleCount int     `json:"article_count"`
}

// InsiderSentiment is MSPR aggregated over a trailing window
// 윈도우 필터링은 호출자 책임
type InsiderSentiment struct {
	MSPR         float64 `json:"mspr"` // -100 ~ 100
	WindowMonths int     `json:"window_months"`
}

// ValidInsiderWindows lists the trailing windows callers may aggregate over
var ValidInsiderWindows = []int{1, 2, 3, 6, 12}

// IsValidInsiderWindow reports whether months is a supported window
func IsValidInsiderWindow(months int) bool {
	for _, w := range ValidInsiderWindows {
		if w == months {
			return true
		}
	}
	return false
}

// PositionContext describes an existing holding
type PositionContext struct {
	Shares            float64 `json:"shares"`
	AvgBuyPrice       Float   `json:"avg_buy_price"`
	Weight            Float   `json:"weight"` // portfolio weight fraction (0.08 = 8%)
	PersonalTarget    Float   `json:"personal_target"`
	UnrealizedGainPct Float   `json:"unrealized_gain_pct"`
}

// CurrentPrice returns the latest price if technicals carry one
func (in ScoreInputs) CurrentPrice() Float {
	t, ok := in.Technicals.Get()
	if !ok {
		return None[float64]()
	}
	return t.Price
}

// HasPosition reports whether the ticker is held
func (in ScoreInputs) HasPosition() bool {
	return in.Position.Present()
}

// ErrInvalidInputs marks inputs rejected before scoring
var ErrInvalidInputs = errors.New("invalid score inputs")

// Validate checks the few structural requirements of ScoreInputs.
// Missing data is never an error; only identity and the insider window are checked.
func (in ScoreInputs) Validate() error {
	if strings.TrimSpace(in.Ticker) == "" {
		return fmt.Errorf("%w: ticker is required", ErrInvalidInputs)
	}
	if ins, ok := in.Insider.Get(); ok && ins.WindowMonths != 0 && !IsValidInsiderWindow(ins.WindowMonths) {
		return fmt.Errorf("%w: insider window %d months not in %v", ErrInvalidInputs, ins.WindowMonths, ValidInsiderWindows)
	}
	return nil
}
