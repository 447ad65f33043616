package s5_signallog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PriceRepository implements contracts.PriceLookup on data.daily_prices
// ⭐ SSOT: 결과 평가용 종가 조회는 여기서만
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// CloseOnOrAfter returns the first close on or after date.
// ok is false when no trading day has been recorded yet.
func (r *PriceRepository) CloseOnOrAfter(ctx context.Context, ticker string, date time.Time) (float64, bool, error) {
	query := `
		SELECT close_price
		FROM data.daily_prices
		WHERE stock_code = $1 AND trade_date >= $2
		ORDER BY trade_date ASC
		LIMIT 1
	`

	var closePrice float64
	err := r.pool.QueryRow(ctx, query, ticker, date).Scan(&closePrice)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get close for %s: %w", ticker, err)
	}
	return closePrice, true, nil
}
