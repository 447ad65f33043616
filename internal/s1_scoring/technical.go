package s1_scoring

import (
	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
)

// TechnicalScorer scores RSI / MACD / Bollinger / ADX / Stochastic
// ⭐ SSOT: 기술적 점수와 bias 판정은 여기서만
type TechnicalScorer struct {
	cfg scoreconfig.Technical
}

// NewTechnicalScorer creates a new technical scorer
func NewTechnicalScorer(cfg scoreconfig.Technical) *TechnicalScorer {
	return &TechnicalScorer{cfg: cfg}
}

// TechnicalResult is the score plus the bias vote
type TechnicalResult struct {
	contracts.CategoryScore
	Bias    contracts.TechnicalBias
	Bullish int
	Bearish int
}

// Score calculates the technical score and bias
func (s *TechnicalScorer) Score(in contracts.Optional[contracts.TechnicalIndicators]) TechnicalResult {
	ind, ok := in.Get()
	if !ok {
		ind = contracts.TechnicalIndicators{}
	}

	score := sumComponents([]contracts.ScoreComponent{
		LadderComponent("rsi", s.cfg.RSI, ind.RSI14),
		s.macd(ind),
		LadderComponent("bollinger", s.cfg.Bollinger, ind.BollingerPosition),
		s.adx(ind),
		s.stochastic(ind),
	})

	bull, bear := s.votes(ind)
	bias := contracts.BiasNeutral
	switch {
	case bull > bear:
		bias = contracts.BiasBullish
	case bear > bull:
		bias = contracts.BiasBearish
	}

	return TechnicalResult{
		CategoryScore: score,
		Bias:          bias,
		Bullish:       bull,
		Bearish:       bear,
	}
}

func (s *TechnicalScorer) macd(ind contracts.TechnicalIndicators) contracts.ScoreComponent {
	p := s.cfg.MACD
	line, okLine := ind.MACD.Get()
	signal, okSignal := ind.MACDSignal.Get()
	if !okLine || !okSignal {
		return contracts.NewComponent("macd", 0, p.Max)
	}

	hist := ind.MACDHistogram.OrElse(line - signal)
	points := p.Bearish
	switch {
	case line > signal && hist > 0:
		points = p.BullishHistogram
	case line > signal:
		points = p.AboveSignal
	case line > 0:
		points = p.BelowSignalPositive
	}
	return contracts.NewComponent("macd", points, p.Max)
}

func (s *TechnicalScorer) adx(ind contracts.TechnicalIndicators) contracts.ScoreComponent {
	p := s.cfg.ADX
	adx, okADX := ind.ADX.Get()
	plus, okPlus := ind.PlusDI.Get()
	minus, okMinus := ind.MinusDI.Get()
	if !okADX || !okPlus || !okMinus {
		return contracts.NewComponent("adx", 0, p.Max)
	}

	var points float64
	trending := adx >= p.TrendThreshold
	switch {
	case trending && plus > minus:
		points = p.StrongBull
	case trending && minus > plus:
		points = p.StrongBear
	case plus > minus:
		points = p.WeakBull
	default:
		points = p.WeakBear
	}
	return contracts.NewComponent("adx", points, p.Max)
}

func (s *TechnicalScorer) stochastic(ind contracts.TechnicalIndicators) contracts.ScoreComponent {
	p := s.cfg.Stochastic
	k, okK := ind.StochK.Get()
	if !okK {
		return contracts.NewComponent("stochastic", 0, p.Max)
	}
	// %D가 없으면 교차 판단 불가 → %K만으로 판정
	d := ind.StochD.OrElse(k)

	var points float64
	switch {
	case k < p.Oversold && k > d:
		points = p.OversoldRising
	case k < p.Oversold:
		points = p.OversoldOnly
	case k > p.Overbought && k < d:
		points = p.OverboughtFalling
	case k > p.Overbought:
		points = p.OverboughtOnly
	case k > d:
		points = p.Rising
	default:
		points = p.Falling
	}
	return contracts.NewComponent("stochastic", points, p.Max)
}

// votes counts bullish and bearish sub-signals
func (s *TechnicalScorer) votes(ind contracts.TechnicalIndicators) (bull, bear int) {
	b := s.cfg.Bias

	if rsi, ok := ind.RSI14.Get(); ok {
		if rsi < b.RSIOversold {
			bull++
		} else if rsi > b.RSIOverbought {
			bear++
		}
	}

	line, okLine := ind.MACD.Get()
	signal, okSignal := ind.MACDSignal.Get()
	if okLine && okSignal {
		if line > signal {
			bull++
		} else if line < signal {
			bear++
		}
	}

	if pb, ok := ind.BollingerPosition.Get(); ok {
		if pb < b.BollingerLow {
			bull++
		} else if pb > b.BollingerHigh {
			bear++
		}
	}

	adx, okADX := ind.ADX.Get()
	plus, okPlus := ind.PlusDI.Get()
	minus, okMinus := ind.MinusDI.Get()
	if okADX && okPlus && okMinus && adx >= b.ADXTrend {
		if plus > minus {
			bull++
		} else if minus > plus {
			bear++
		}
	}

	if k, ok := ind.StochK.Get(); ok {
		if k < b.StochOversold {
			bull++
		} else if k > b.StochOverbought {
			bear++
		}
	}

	return bull, bear
}
