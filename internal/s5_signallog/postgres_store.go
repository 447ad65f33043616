package s5_signallog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/pkg/database"
)

//go:embed migrations/*.sql
var migrations embed.FS

// EnsureSchema applies the signal log DDL inside one transaction
func EnsureSchema(ctx context.Context, db *database.DB) error {
	files, err := migrations.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	return db.InTx(ctx, func(tx pgx.Tx) error {
		for _, f := range files {
			body, err := migrations.ReadFile("migrations/" + f.Name())
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", f.Name(), err)
			}
			for _, stmt := range strings.Split(string(body), ";") {
				if strings.TrimSpace(stmt) == "" {
					continue
				}
				if _, err := tx.Exec(ctx, stmt); err != nil {
					return fmt.Errorf("migration %s failed: %w", f.Name(), err)
				}
			}
		}
		return nil
	})
}

// PostgresStore implements contracts.SignalLogStore on signals.signal_log
// ⭐ SSOT: signals.signal_log 테이블 접근은 여기서만
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new signal log store
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const entryColumns = `
	id, portfolio_id, user_id, ticker, signal_type, signal_strength,
	fundamental_score, technical_score, analyst_score, news_score, insider_score,
	portfolio_score, composite_score, conviction_score, dip_score,
	price_at_signal, price_after_1d, price_after_7d, price_after_14d, price_after_30d,
	metadata, created_at`

const selectColumns = `
	id::text, portfolio_id, user_id, ticker, signal_type, signal_strength,
	fundamental_score, technical_score, analyst_score, news_score, insider_score,
	portfolio_score, composite_score, conviction_score, dip_score,
	price_at_signal, price_after_1d, price_after_7d, price_after_14d, price_after_30d,
	metadata, created_at`

// scopeFilter returns the WHERE fragment for a scope bound to $pos
func scopeFilter(scope contracts.Scope, pos int) (string, string) {
	if scope.PortfolioID != "" {
		return fmt.Sprintf("portfolio_id = $%d", pos), scope.PortfolioID
	}
	return fmt.Sprintf("user_id = $%d AND portfolio_id IS NULL", pos), scope.UserID
}

// Exists implements contracts.SignalLogStore
func (s *PostgresStore) Exists(ctx context.Context, scope contracts.Scope, ticker string, signalType contracts.SignalType, since time.Time) (bool, error) {
	where, owner := scopeFilter(scope, 1)
	query := `
		SELECT EXISTS (
			SELECT 1 FROM signals.signal_log
			WHERE ` + where + ` AND ticker = $2 AND signal_type = $3 AND created_at >= $4
		)
	`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, owner, ticker, string(signalType), since).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check signal existence: %w", err)
	}
	return exists, nil
}

// Insert implements contracts.SignalLogStore
func (s *PostgresStore) Insert(ctx context.Context, e *contracts.SignalLogEntry) error {
	query := `
		INSERT INTO signals.signal_log (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	meta := e.Metadata
	if len(meta) == 0 {
		meta = []byte("{}")
	}

	_, err := s.pool.Exec(ctx, query,
		e.ID, nullString(e.Scope.PortfolioID), nullString(e.Scope.UserID), e.Ticker, string(e.SignalType), e.SignalStrength,
		e.FundamentalScore, e.TechnicalScore, e.AnalystScore, e.NewsScore, e.InsiderScore,
		nullFloat(e.PortfolioScore), e.CompositeScore, e.ConvictionScore, e.DipScore,
		nullFloat(e.PriceAtSignal), nullFloat(e.PriceAfter1D), nullFloat(e.PriceAfter7D), nullFloat(e.PriceAfter14D), nullFloat(e.PriceAfter30D),
		meta, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert signal_log: %w", err)
	}
	return nil
}

// List implements contracts.SignalLogStore
func (s *PostgresStore) List(ctx context.Context, scope contracts.Scope, limit int) ([]*contracts.SignalLogEntry, error) {
	where, owner := scopeFilter(scope, 1)
	query := `
		SELECT ` + selectColumns + `
		FROM signals.signal_log
		WHERE ` + where + `
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list signal_log: %w", err)
	}
	defer rows.Close()

	var entries []*contracts.SignalLogEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete implements contracts.SignalLogStore
func (s *PostgresStore) Delete(ctx context.Context, scope contracts.Scope, id string) error {
	where, owner := scopeFilter(scope, 2)
	tag, err := s.pool.Exec(ctx, `DELETE FROM signals.signal_log WHERE id = $1 AND `+where, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete signal_log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear implements contracts.SignalLogStore
func (s *PostgresStore) Clear(ctx context.Context, scope contracts.Scope) (int64, error) {
	where, owner := scopeFilter(scope, 1)
	tag, err := s.pool.Exec(ctx, `DELETE FROM signals.signal_log WHERE `+where, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to clear signal_log: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Performance implements contracts.SignalLogStore
func (s *PostgresStore) Performance(ctx context.Context, scope contracts.Scope) ([]contracts.SignalPerformance, error) {
	where, owner := scopeFilter(scope, 1)

	// 기간별 평가 수 / 승리 수. CONSIDER_TRIM은 하락이 승리
	var cols []string
	for _, p := range contracts.OutcomePeriods {
		col := p.Column()
		cols = append(cols,
			fmt.Sprintf("COUNT(*) FILTER (WHERE price_at_signal > 0 AND %s IS NOT NULL)", col),
			fmt.Sprintf(`COUNT(*) FILTER (WHERE price_at_signal > 0 AND %[1]s IS NOT NULL AND (
				(signal_type = '%[2]s' AND %[1]s < price_at_signal) OR
				(signal_type <> '%[2]s' AND %[1]s > price_at_signal)))`, col, contracts.SignalConsiderTrim),
		)
	}

	query := `
		SELECT signal_type, COUNT(*), ` + strings.Join(cols, ", ") + `
		FROM signals.signal_log
		WHERE ` + where + `
		GROUP BY signal_type
	`

	rows, err := s.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query signal performance: %w", err)
	}
	defer rows.Close()

	byType := make(map[contracts.SignalType]contracts.SignalPerformance)
	for rows.Next() {
		var signalType string
		var total int
		counts := make([]int, 2*len(contracts.OutcomePeriods))

		dest := []any{&signalType, &total}
		for i := range counts {
			dest = append(dest, &counts[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan signal performance: %w", err)
		}

		perf := contracts.SignalPerformance{
			SignalType: contracts.SignalType(signalType),
			Total:      total,
			Periods:    make(map[contracts.OutcomePeriod]contracts.PeriodStats, len(contracts.OutcomePeriods)),
		}
		for i, p := range contracts.OutcomePeriods {
			perf.Periods[p] = contracts.PeriodStats{Evaluated: counts[2*i], Winners: counts[2*i+1]}
		}
		byType[perf.SignalType] = perf
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]contracts.SignalPerformance, 0, len(byType))
	for _, t := range contracts.AllSignalTypes {
		if perf, ok := byType[t]; ok {
			out = append(out, perf)
		}
	}
	return out, nil
}

// PendingOutcomes implements contracts.SignalLogStore
func (s *PostgresStore) PendingOutcomes(ctx context.Context, now time.Time, offset, limit int) ([]contracts.PendingOutcome, error) {
	var parts []string
	var args []any
	for i, p := range contracts.OutcomePeriods {
		parts = append(parts, fmt.Sprintf(
			"SELECT id::text, ticker, %d AS period, created_at FROM signals.signal_log WHERE %s IS NULL AND created_at <= $%d",
			int(p), p.Column(), i+1,
		))
		args = append(args, now.AddDate(0, 0, -int(p)))
	}
	args = append(args, limit, offset)

	query := strings.Join(parts, "\nUNION ALL\n") +
		fmt.Sprintf("\nORDER BY created_at ASC, id ASC, period ASC\nLIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending outcomes: %w", err)
	}
	defer rows.Close()

	var out []contracts.PendingOutcome
	for rows.Next() {
		var po contracts.PendingOutcome
		var period int
		if err := rows.Scan(&po.EntryID, &po.Ticker, &period, &po.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending outcome: %w", err)
		}
		po.Period = contracts.OutcomePeriod(period)
		out = append(out, po)
	}
	return out, rows.Err()
}

// SetOutcome implements contracts.SignalLogStore
func (s *PostgresStore) SetOutcome(ctx context.Context, id string, period contracts.OutcomePeriod, price float64) error {
	col := period.Column()
	if col == "" {
		return fmt.Errorf("unknown outcome period: %d", period)
	}

	tag, err := s.pool.Exec(ctx, `UPDATE signals.signal_log SET `+col+` = $2 WHERE id = $1`, id, price)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", col, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOlderThan implements contracts.SignalLogStore
func (s *PostgresStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM signals.signal_log WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge signal_log: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanEntry(row pgx.Row) (*contracts.SignalLogEntry, error) {
	var e contracts.SignalLogEntry
	var portfolioID, userID *string
	var signalType string
	var portfolioScore, priceAt, after1, after7, after14, after30 *float64

	err := row.Scan(
		&e.ID, &portfolioID, &userID, &e.Ticker, &signalType, &e.SignalStrength,
		&e.FundamentalScore, &e.TechnicalScore, &e.AnalystScore, &e.NewsScore, &e.InsiderScore,
		&portfolioScore, &e.CompositeScore, &e.ConvictionScore, &e.DipScore,
		&priceAt, &after1, &after7, &after14, &after30,
		&e.Metadata, &e.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan signal_log: %w", err)
	}

	if portfolioID != nil {
		e.Scope.PortfolioID = *portfolioID
	}
	if userID != nil {
		e.Scope.UserID = *userID
	}
	e.SignalType = contracts.SignalType(signalType)
	e.PortfolioScore = fromNull(portfolioScore)
	e.PriceAtSignal = fromNull(priceAt)
	e.PriceAfter1D = fromNull(after1)
	e.PriceAfter7D = fromNull(after7)
	e.PriceAfter14D = fromNull(after14)
	e.PriceAfter30D = fromNull(after30)
	return &e, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullFloat(f contracts.Float) *float64 {
	v, ok := f.Get()
	if !ok {
		return nil
	}
	return &v
}

func fromNull(p *float64) contracts.Float {
	if p == nil {
		return contracts.None[float64]()
	}
	return contracts.F(*p)
}
