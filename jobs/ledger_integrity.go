package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// LedgerIntegrityChecker recomputes bank balances from the transaction ledger
// and reports any drift from the cached column. Drift means some code path
// mutated bank_accounts.balance outside the transaction insert, which the
// design forbids.
type LedgerIntegrityChecker struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewLedgerIntegrityChecker constructs a checker.
func NewLedgerIntegrityChecker(pool *pgxpool.Pool, logger *slog.Logger) *LedgerIntegrityChecker {
	return &LedgerIntegrityChecker{pool: pool, logger: logger}
}

// Handle processes TaskLedgerIntegrity tasks.
func (c *LedgerIntegrityChecker) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	return c.Run(ctx, payload.BankAccountID)
}

// Run executes the check. accountID zero means every account.
func (c *LedgerIntegrityChecker) Run(ctx context.Context, accountID int64) error {
	query := `SELECT a.id, a.name, a.balance,
COALESCE(SUM(CASE WHEN t.direction = 'INFLOW' THEN t.amount ELSE -t.amount END), 0) AS computed
FROM bank_accounts a
LEFT JOIN bank_transactions t ON t.bank_account_id = a.id
WHERE ($1 = 0 OR a.id = $1)
GROUP BY a.id, a.name, a.balance
ORDER BY a.id`

	rows, err := c.pool.Query(ctx, query, accountID)
	if err != nil {
		return err
	}
	defer rows.Close()

	checked, drifted := 0, 0
	for rows.Next() {
		var (
			id               int64
			name             string
			cached, computed float64
		)
		if err := rows.Scan(&id, &name, &cached, &computed); err != nil {
			return err
		}
		checked++
		if math.Abs(cached-computed) > 0.005 {
			drifted++
			c.logger.Error("bank balance drift",
				slog.Int64("bank_account_id", id),
				slog.String("name", name),
				slog.Float64("cached", cached),
				slog.Float64("computed", computed))
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	c.logger.Info("ledger integrity check complete",
		slog.Int("accounts_checked", checked),
		slog.Int("accounts_drifted", drifted))
	return nil
}

// IdempotencyCleanupHandler prunes processed idempotency keys past retention.
type IdempotencyCleanupHandler struct {
	store  *shared.IdempotencyStore
	logger *slog.Logger
}

// NewIdempotencyCleanupHandler constructs a handler.
func NewIdempotencyCleanupHandler(store *shared.IdempotencyStore, logger *slog.Logger) *IdempotencyCleanupHandler {
	return &IdempotencyCleanupHandler{store: store, logger: logger}
}

// Handle processes TaskIdempotencyCleanup tasks.
func (h *IdempotencyCleanupHandler) Handle(ctx context.Context, t *asynq.Task) error {
	var payload IdempotencyCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	started := time.Now()
	if err := h.store.Cleanup(ctx, payload.Retention()); err != nil {
		return err
	}
	h.logger.Info("idempotency cleanup complete", slog.Duration("took", time.Since(started)))
	return nil
}
