package scoreconfig

// Config는 추천 엔진의 모든 가중치와 점수 구간
// ⭐ SSOT: 임계값/배점은 코드가 아니라 여기서만 정의
type Config struct {
	Meta        Meta        `yaml:"meta" json:"meta"`
	Composite   Composite   `yaml:"composite" json:"composite"`
	Fundamental Fundamental `yaml:"fundamental" json:"fundamental"`
	Technical   Technical   `yaml:"technical" json:"technical"`
	Analyst     Analyst     `yaml:"analyst" json:"analyst"`
	News        Neutral     `yaml:"news" json:"news"`
	Insider     Neutral     `yaml:"insider" json:"insider"`
	Portfolio   Portfolio   `yaml:"portfolio" json:"portfolio"`
	Target      Target      `yaml:"target" json:"target"`
	Conviction  Conviction  `yaml:"conviction" json:"conviction"`
	Dip         Dip         `yaml:"dip" json:"dip"`
	Signals     Signals     `yaml:"signals" json:"signals"`
	Strategy    Strategy    `yaml:"strategy" json:"strategy"`
}

// Meta 메타 정보
type Meta struct {
	ConfigID string `yaml:"config_id" json:"config_id"`
	Version  string `yaml:"version" json:"version"`
}

// MissingPortfolioPolicy decides the composite when no position exists
type MissingPortfolioPolicy string

const (
	PolicyRenormalize MissingPortfolioPolicy = "renormalize"
	PolicyNeutral     MissingPortfolioPolicy = "neutral"
)

// Composite 가중 합산
type Composite struct {
	Weights                CompositeWeights       `yaml:"weights" json:"weights"`
	MissingPortfolioPolicy MissingPortfolioPolicy `yaml:"missing_portfolio_policy" json:"missing_portfolio_policy"`
	NeutralPortfolioScore  float64                `yaml:"neutral_portfolio_score" json:"neutral_portfolio_score"`
}

type CompositeWeights struct {
	Fundamental float64 `yaml:"fundamental" json:"fundamental"`
	Technical   float64 `yaml:"technical" json:"technical"`
	Analyst     float64 `yaml:"analyst" json:"analyst"`
	News        float64 `yaml:"news" json:"news"`
	Insider     float64 `yaml:"insider" json:"insider"`
	Portfolio   float64 `yaml:"portfolio" json:"portfolio"`
}

// Sum returns the total weight (must be 1.0)
func (w CompositeWeights) Sum() float64 {
	return w.Fundamental + w.Technical + w.Analyst + w.News + w.Insider + w.Portfolio
}

// Fundamental 5개 항목 x 20점
type Fundamental struct {
	PE            Ladder `yaml:"pe" json:"pe"`
	ROE           Ladder `yaml:"roe" json:"roe"`
	NetMargin     Ladder `yaml:"net_margin" json:"net_margin"`
	RevenueGrowth Ladder `yaml:"revenue_growth" json:"revenue_growth"`
	DebtToEquity  Ladder `yaml:"debt_to_equity" json:"debt_to_equity"`
}

// Technical RSI 25 / MACD 20 / Bollinger 20 / ADX 15 / Stochastic 20
type Technical struct {
	RSI        Ladder           `yaml:"rsi" json:"rsi"`
	MACD       MACDPoints       `yaml:"macd" json:"macd"`
	Bollinger  Ladder           `yaml:"bollinger" json:"bollinger"`
	ADX        ADXPoints        `yaml:"adx" json:"adx"`
	Stochastic StochasticPoints `yaml:"stochastic" json:"stochastic"`
	Bias       BiasThresholds   `yaml:"bias" json:"bias"`
}

type MACDPoints struct {
	Max                 float64 `yaml:"max" json:"max"`
	BullishHistogram    float64 `yaml:"bullish_histogram" json:"bullish_histogram"`
	AboveSignal         float64 `yaml:"above_signal" json:"above_signal"`
	BelowSignalPositive float64 `yaml:"below_signal_positive" json:"below_signal_positive"`
	Bearish             float64 `yaml:"bearish" json:"bearish"`
}

type ADXPoints struct {
	Max            float64 `yaml:"max" json:"max"`
	TrendThreshold float64 `yaml:"trend_threshold" json:"trend_threshold"`
	StrongBull     float64 `yaml:"strong_bull" json:"strong_bull"`
	StrongBear     float64 `yaml:"strong_bear" json:"strong_bear"`
	WeakBull       float64 `yaml:"weak_bull" json:"weak_bull"`
	WeakBear       float64 `yaml:"weak_bear" json:"weak_bear"`
}

type StochasticPoints struct {
	Max               float64 `yaml:"max" json:"max"`
	Oversold          float64 `yaml:"oversold" json:"oversold"`
	Overbought        float64 `yaml:"overbought" json:"overbought"`
	OversoldRising    float64 `yaml:"oversold_rising" json:"oversold_rising"`
	OversoldOnly      float64 `yaml:"oversold_only" json:"oversold_only"`
	OverboughtFalling float64 `yaml:"overbought_falling" json:"overbought_falling"`
	OverboughtOnly    float64 `yaml:"overbought_only" json:"overbought_only"`
	Rising            float64 `yaml:"rising" json:"rising"`
	Falling           float64 `yaml:"falling" json:"falling"`
}

// BiasThresholds 기술적 bias 투표 기준
type BiasThresholds struct {
	RSIOversold     float64 `yaml:"rsi_oversold" json:"rsi_oversold"`
	RSIOverbought   float64 `yaml:"rsi_overbought" json:"rsi_overbought"`
	BollingerLow    float64 `yaml:"bollinger_low" json:"bollinger_low"`
	BollingerHigh   float64 `yaml:"bollinger_high" json:"bollinger_high"`
	ADXTrend        float64 `yaml:"adx_trend" json:"adx_trend"`
	StochOversold   float64 `yaml:"stoch_oversold" json:"stoch_oversold"`
	StochOverbought float64 `yaml:"stoch_overbought" json:"stoch_overbought"`
}

// Analyst consensus 70 + coverage 30
type Analyst struct {
	Consensus Ladder `yaml:"consensus" json:"consensus"`
	Coverage  Ladder `yaml:"coverage" json:"coverage"`
}

// Neutral is used by scorers whose absence default is a neutral score
type Neutral struct {
	NeutralScore float64 `yaml:"neutral_score" json:"neutral_score"`
}

// Portfolio 보유 종목 컨텍스트 (30/25/20/25)
type Portfolio struct {
	TargetUpside   Ladder `yaml:"target_upside" json:"target_upside"`
	AvgBuyDistance Ladder `yaml:"avg_buy_distance" json:"avg_buy_distance"`
	Weight         Ladder `yaml:"weight" json:"weight"`
	UnrealizedGain Ladder `yaml:"unrealized_gain" json:"unrealized_gain"`
}

// Target 목표가 추정
type Target struct {
	EstimatedUpside Ladder `yaml:"estimated_upside" json:"estimated_upside"` // consensus → upside %
}

// Conviction 펀더멘털 안정성 40 / 시장 포지션 30 / 모멘텀 30
type Conviction struct {
	ROE           Ladder        `yaml:"roe" json:"roe"`
	RevenueCAGR   Ladder        `yaml:"revenue_cagr" json:"revenue_cagr"`
	NetMargin     Ladder        `yaml:"net_margin" json:"net_margin"`
	DebtToEquity  Ladder        `yaml:"debt_to_equity" json:"debt_to_equity"`
	Consensus     Ladder        `yaml:"consensus" json:"consensus"`
	TargetUpside  Ladder        `yaml:"target_upside" json:"target_upside"`
	EarningsBeats Ladder        `yaml:"earnings_beats" json:"earnings_beats"`
	InsiderScore  Ladder        `yaml:"insider_score" json:"insider_score"`
	SMA200        SMA200Points  `yaml:"sma200" json:"sma200"`
	RSIBand       RSIBandPoints `yaml:"rsi_band" json:"rsi_band"`
	Levels        LevelCutoffs  `yaml:"levels" json:"levels"`
}

type SMA200Points struct {
	Max              float64 `yaml:"max" json:"max"`
	ExtendedAbovePct float64 `yaml:"extended_above_pct" json:"extended_above_pct"`
	Above            float64 `yaml:"above" json:"above"`
	Extended         float64 `yaml:"extended" json:"extended"`
	SlightlyBelowPct float64 `yaml:"slightly_below_pct" json:"slightly_below_pct"`
	SlightlyBelow    float64 `yaml:"slightly_below" json:"slightly_below"`
}

type RSIBandPoints struct {
	Max      float64 `yaml:"max" json:"max"`
	CoreLow  float64 `yaml:"core_low" json:"core_low"`
	CoreHigh float64 `yaml:"core_high" json:"core_high"`
	Core     float64 `yaml:"core" json:"core"`
	WideLow  float64 `yaml:"wide_low" json:"wide_low"`
	WideHigh float64 `yaml:"wide_high" json:"wide_high"`
	Wide     float64 `yaml:"wide" json:"wide"`
	Outside  float64 `yaml:"outside" json:"outside"`
}

// LevelCutoffs HIGH >= High, MEDIUM >= Medium, else LOW
type LevelCutoffs struct {
	High   float64 `yaml:"high" json:"high"`
	Medium float64 `yaml:"medium" json:"medium"`
}

// Dip 과매도 점수 + 품질 게이트
type Dip struct {
	RSI          Ladder      `yaml:"rsi" json:"rsi"`
	Bollinger    Ladder      `yaml:"bollinger" json:"bollinger"`
	BelowSMA50   Ladder      `yaml:"below_sma50" json:"below_sma50"`
	BelowSMA200  Ladder      `yaml:"below_sma200" json:"below_sma200"`
	SMAMax       float64     `yaml:"sma_max" json:"sma_max"`
	Range52W     Ladder      `yaml:"range_52w" json:"range_52w"`
	Stochastic   Ladder      `yaml:"stochastic" json:"stochastic"`
	DipThreshold float64     `yaml:"dip_threshold" json:"dip_threshold"`
	Gate         QualityGate `yaml:"gate" json:"gate"`
}

// QualityGate value-trap guard
type QualityGate struct {
	MinFundamental float64 `yaml:"min_fundamental" json:"min_fundamental"`
	MinAnalyst     float64 `yaml:"min_analyst" json:"min_analyst"`
	MinNews        float64 `yaml:"min_news" json:"min_news"`
}

// Signals 시그널 규칙 임계값
type Signals struct {
	Momentum   MomentumRule   `yaml:"momentum" json:"momentum"`
	NearTarget NearTargetRule `yaml:"near_target" json:"near_target"`
	Trim       TrimRule       `yaml:"trim" json:"trim"`
	Watch      WatchRule      `yaml:"watch" json:"watch"`
	Accumulate AccumulateRule `yaml:"accumulate" json:"accumulate"`
}

type MomentumRule struct {
	MinTechnical float64 `yaml:"min_technical" json:"min_technical"`
	RSILow       float64 `yaml:"rsi_low" json:"rsi_low"`
	RSIHigh      float64 `yaml:"rsi_high" json:"rsi_high"`
}

type NearTargetRule struct {
	MaxAbsUpsidePct float64 `yaml:"max_abs_upside_pct" json:"max_abs_upside_pct"`
}

type TrimRule struct {
	MaxTechnical float64 `yaml:"max_technical" json:"max_technical"`
	MinRSI       float64 `yaml:"min_rsi" json:"min_rsi"`
	MinWeight    float64 `yaml:"min_weight" json:"min_weight"`
	MaxUpsidePct float64 `yaml:"max_upside_pct" json:"max_upside_pct"`
}

type WatchRule struct {
	FundamentalLow  float64 `yaml:"fundamental_low" json:"fundamental_low"`
	FundamentalHigh float64 `yaml:"fundamental_high" json:"fundamental_high"`
	InsiderBelow    float64 `yaml:"insider_below" json:"insider_below"`
	NewsLow         float64 `yaml:"news_low" json:"news_low"`
	NewsHigh        float64 `yaml:"news_high" json:"news_high"`
}

type AccumulateRule struct {
	DipLow         float64 `yaml:"dip_low" json:"dip_low"`
	DipHigh        float64 `yaml:"dip_high" json:"dip_high"`
	MinFundamental float64 `yaml:"min_fundamental" json:"min_fundamental"`
}

// Strategy 매수/매도 전략
type Strategy struct {
	SupportFallback float64   `yaml:"support_fallback" json:"support_fallback"` // current * x
	AvgBuyPremium   float64   `yaml:"avg_buy_premium" json:"avg_buy_premium"`   // avg * x
	DCA             DCATiers  `yaml:"dca" json:"dca"`
	Exit            ExitRules `yaml:"exit" json:"exit"`
}

// DCATiers weight thresholds are fractions, pct values are % of portfolio
type DCATiers struct {
	NoDCAAbove    float64 `yaml:"no_dca_above" json:"no_dca_above"`
	CautiousAbove float64 `yaml:"cautious_above" json:"cautious_above"`
	NormalFrom    float64 `yaml:"normal_from" json:"normal_from"` // inclusive
	CautiousPct   float64 `yaml:"cautious_pct" json:"cautious_pct"`
	NormalPct     float64 `yaml:"normal_pct" json:"normal_pct"`
	AggressivePct float64 `yaml:"aggressive_pct" json:"aggressive_pct"`
}

type ExitRules struct {
	StopLossBasePct         float64 `yaml:"stop_loss_base_pct" json:"stop_loss_base_pct"`
	StopLossPerConviction   float64 `yaml:"stop_loss_per_conviction" json:"stop_loss_per_conviction"`
	TakeProfitBasePct       float64 `yaml:"take_profit_base_pct" json:"take_profit_base_pct"`
	TakeProfitPerConviction float64 `yaml:"take_profit_per_conviction" json:"take_profit_per_conviction"`
	SecondTargetMultiplier  float64 `yaml:"second_target_multiplier" json:"second_target_multiplier"`
	MaxWeight               float64 `yaml:"max_weight" json:"max_weight"`
}
