package documents

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const summaryCacheKey = "documents:outstanding:summary"

// RepositoryPort defines data access methods for the document ledger.
type RepositoryPort interface {
	ListOpen(ctx context.Context, kind DocumentKind) ([]Document, error)
	ListActiveCreditNotes(ctx context.Context) ([]CreditNote, error)
	OutstandingSummary(ctx context.Context) (OutstandingSummary, error)
}

// Service handles document ledger read paths. Settlement mutations go through
// the factoring orchestrator only.
type Service struct {
	repo  RepositoryPort
	cache *redis.Client
	ttl   time.Duration
	group singleflight.Group
}

// NewService builds a Service instance. cache may be nil.
func NewService(repo RepositoryPort, cache *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Service{repo: repo, cache: cache, ttl: ttl}
}

// ListOpen returns factorable documents of one kind.
func (s *Service) ListOpen(ctx context.Context, kind DocumentKind) ([]Document, error) {
	if kind != KindPurchaseInvoice && kind != KindSaleInvoice {
		return nil, errors.New("documents: unknown document kind")
	}
	return s.repo.ListOpen(ctx, kind)
}

// ListActiveCreditNotes returns credit notes available for sale settlements.
func (s *Service) ListActiveCreditNotes(ctx context.Context) ([]CreditNote, error) {
	return s.repo.ListActiveCreditNotes(ctx)
}

// Summary returns the outstanding totals, served from cache when fresh.
// Concurrent cache misses collapse into a single ledger query.
func (s *Service) Summary(ctx context.Context) (OutstandingSummary, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, summaryCacheKey).Bytes()
		if err == nil {
			var cached OutstandingSummary
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	resultChan := s.group.DoChan(summaryCacheKey, func() (interface{}, error) {
		summary, err := s.repo.OutstandingSummary(ctx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if raw, err := json.Marshal(summary); err == nil {
				_ = s.cache.Set(ctx, summaryCacheKey, raw, s.ttl).Err()
			}
		}
		return summary, nil
	})
	select {
	case <-ctx.Done():
		return OutstandingSummary{}, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return OutstandingSummary{}, res.Err
		}
		return res.Val.(OutstandingSummary), nil
	}
}

// InvalidateSummary drops the cached totals, called after settlements commit.
func (s *Service) InvalidateSummary(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, summaryCacheKey).Err()
	}
}
