package contracts

// ScoreComponent justifies part of a category score
type ScoreComponent struct {
	Name      string  `json:"name"`
	Points    float64 `json:"points"`
	MaxPoints float64 `json:"max_points"`
	Percent   float64 `json:"percent"`
}

// NewComponent builds a component with its percent filled in
func NewComponent(name string, points, maxPoints float64) ScoreComponent {
	pct := 0.0
	if maxPoints > 0 {
		pct = points / maxPoints * 100
	}
	return ScoreComponent{
		Name:      name,
		Points:    points,
		MaxPoints: maxPoints,
		Percent:   pct,
	}
}

// CategoryScore is a 0-100 score with its breakdown
type CategoryScore struct {
	Score     float64          `json:"score"`
	Breakdown []ScoreComponent `json:"breakdown"`
}

// ConvictionLevel rates long-hold quality
type ConvictionLevel string

const (
	ConvictionHigh   ConvictionLevel = "HIGH"
	ConvictionMedium ConvictionLevel = "MEDIUM"
	ConvictionLow    ConvictionLevel = "LOW"
)

// TechnicalBias is the majority vote of technical sub-signals
type TechnicalBias string

const (
	BiasBullish TechnicalBias = "BULLISH"
	BiasBearish TechnicalBias = "BEARISH"
	BiasNeutral TechnicalBias = "NEUTRAL"
)

// TargetSource tells which input produced the target price
type TargetSource string

const (
	TargetPersonal  TargetSource = "personal"
	TargetAnalyst   TargetSource = "analyst"
	TargetEstimated TargetSource = "estimated"
	TargetNone      TargetSource = ""
)

// TargetResolution is the output of the target price resolver
type TargetResolution struct {
	Price     Float        `json:"price"`
	UpsidePct Float        `json:"upside_pct"`
	Source    TargetSource `json:"source"`
}

// CategoryScores groups the six category scores
type CategoryScores struct {
	Fundamental float64 `json:"fundamental"`
	Technical   float64 `json:"technical"`
	Analyst     float64 `json:"analyst"`
	News        float64 `json:"news"`
	Insider     float64 `json:"insider"`
	Portfolio   Float   `json:"portfolio"` // 보유하지 않은 종목은 Absent
}

// Breakdowns keeps every category's justification
type Breakdowns struct {
	Fundamental []ScoreComponent `json:"fundamental"`
	Technical   []ScoreComponent `json:"technical"`
	Analyst     []ScoreComponent `json:"analyst"`
	News        []ScoreComponent `json:"news"`
	Insider     []ScoreComponent `json:"insider"`
	Portfolio   []ScoreComponent `json:"portfolio"`
	Conviction  []ScoreComponent `json:"conviction"`
	Dip         []ScoreComponent `json:"dip"`
}

// DCAMode sizes incremental buying
type DCAMode string

const (
	DCANone       DCAMode = "NO_DCA"
	DCACautious   DCAMode = "CAUTIOUS"
	DCANormal     DCAMode = "NORMAL"
	DCAAggressive DCAMode = "AGGRESSIVE"
)

// BuyStrategy is the entry plan
type BuyStrategy struct {
	BuyZoneLow      float64 `json:"buy_zone_low"`
	BuyZoneHigh     float64 `json:"buy_zone_high"`
	InBuyZone       bool    `json:"in_buy_zone"`
	DCAMode         DCAMode `json:"dca_mode"`
	DCAPct          float64 `json:"dca_pct"` // % of portfolio per tranche
	RiskRewardRatio Float   `json:"risk_reward_ratio"`
}

// HoldingPeriod classifies the expected holding horizon
type HoldingPeriod string

const (
	HoldShort  HoldingPeriod = "SHORT_TERM"
	HoldMedium HoldingPeriod = "MEDIUM_TERM"
	HoldLong   HoldingPeriod = "LONG_TERM"
)

// ExitStrategy is the exit plan
type ExitStrategy struct {
	TakeProfit1     float64       `json:"take_profit_1"`
	TakeProfit2     float64       `json:"take_profit_2"`
	StopLoss        float64       `json:"stop_loss"`
	StopLossPct     float64       `json:"stop_loss_pct"`
	TrailingStopPct float64       `json:"trailing_stop_pct"`
	HoldingPeriod   HoldingPeriod `json:"holding_period"`
	TrimPct         Float         `json:"trim_pct"`
}

// RecommendationMetadata is the raw-value snapshot kept for audit
type RecommendationMetadata struct {
	Price         Float  `json:"price"`
	RSI           Float  `json:"rsi"`
	MACD          Float  `json:"macd"`
	MACDHistogram Float  `json:"macd_histogram"`
	NewsSentiment Float  `json:"news_sentiment"`
	ArticleCount  int    `json:"article_count"`
	InsiderMSPR   Float  `json:"insider_mspr"`
	ConfigHash    string `json:"config_hash"`
}

// StockRecommendation is the engine's single output
// ⭐ SSOT: 엔진 → UI / 시그널 로그 전달. 반환 후 변경 금지
type StockRecommendation struct {
	Ticker      string `json:"ticker"`
	Name        string `json:"name,omitempty"`
	HasPosition bool   `json:"has_position"`

	Scores     CategoryScores `json:"scores"`
	Breakdowns Breakdowns     `json:"breakdowns"`
	Composite  float64        `json:"composite"`

	Conviction      float64         `json:"conviction"`
	ConvictionLevel ConvictionLevel `json:"conviction_level"`

	DipScore        float64 `json:"dip_score"`
	IsDip           bool    `json:"is_dip"`
	DipQualityCheck bool    `json:"dip_quality_check"`

	Target        TargetResolution `json:"target"`
	TechnicalBias TechnicalBias    `json:"technical_bias"`

	Signals       []StockSignal `json:"signals"`
	PrimarySignal StockSignal   `json:"primary_signal"`

	BuyStrategy  BuyStrategy  `json:"buy_strategy"`
	ExitStrategy ExitStrategy `json:"exit_strategy"`

	Metadata RecommendationMetadata `json:"metadata"`
}
