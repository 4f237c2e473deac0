package documents

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryDocRepo struct {
	docs         []Document
	notes        []CreditNote
	summaryCalls atomic.Int64
}

func (r *memoryDocRepo) ListOpen(ctx context.Context, kind DocumentKind) ([]Document, error) {
	var out []Document
	for _, d := range r.docs {
		if d.Kind == kind && d.Status == StatusOpen {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memoryDocRepo) ListActiveCreditNotes(ctx context.Context) ([]CreditNote, error) {
	var out []CreditNote
	for _, n := range r.notes {
		if n.Status == CreditNoteActive {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memoryDocRepo) OutstandingSummary(ctx context.Context) (OutstandingSummary, error) {
	r.summaryCalls.Add(1)
	var s OutstandingSummary
	for _, d := range r.docs {
		if d.Status != StatusOpen {
			continue
		}
		switch d.Kind {
		case KindPurchaseInvoice:
			s.OpenPurchaseCount++
			s.OpenPurchaseBalance += d.Balance
		case KindSaleInvoice:
			s.OpenSaleCount++
			s.OpenSaleBalance += d.Balance
		}
	}
	for _, n := range r.notes {
		if n.Status == CreditNoteActive {
			s.ActiveCreditNotes++
			s.ActiveCreditTotal += n.Total
		}
	}
	return s, nil
}

func testRepo() *memoryDocRepo {
	return &memoryDocRepo{
		docs: []Document{
			{ID: 1, Kind: KindPurchaseInvoice, Total: 1000, Balance: 1000, Status: StatusOpen},
			{ID: 2, Kind: KindSaleInvoice, Total: 600, Balance: 600, Status: StatusOpen},
			{ID: 3, Kind: KindSaleInvoice, Total: 400, Balance: 250, Status: StatusOpen},
			{ID: 4, Kind: KindSaleInvoice, Total: 900, Balance: 0, Status: StatusSettled},
		},
		notes: []CreditNote{
			{ID: 1, Total: 100, Status: CreditNoteActive},
			{ID: 2, Total: 70, Status: CreditNoteApplied},
		},
	}
}

func TestListOpenFiltersByKindAndStatus(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testRepo(), nil, 0)

	sales, err := svc.ListOpen(ctx, KindSaleInvoice)
	require.NoError(t, err)
	require.Len(t, sales, 2)

	purchases, err := svc.ListOpen(ctx, KindPurchaseInvoice)
	require.NoError(t, err)
	require.Len(t, purchases, 1)

	_, err = svc.ListOpen(ctx, DocumentKind("BOGUS"))
	require.Error(t, err)
}

func TestListActiveCreditNotes(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testRepo(), nil, 0)

	notes, err := svc.ListActiveCreditNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, 100.0, notes[0].Total)
}

func TestSummaryAggregates(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testRepo(), nil, 0)

	s, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, s.OpenPurchaseCount)
	require.Equal(t, 1000.0, s.OpenPurchaseBalance)
	require.Equal(t, 2, s.OpenSaleCount)
	require.Equal(t, 850.0, s.OpenSaleBalance)
	require.Equal(t, 1, s.ActiveCreditNotes)
	require.Equal(t, 100.0, s.ActiveCreditTotal)
}

func TestSummaryServedFromCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := testRepo()
	svc := NewService(repo, client, time.Minute)

	first, err := svc.Summary(ctx)
	require.NoError(t, err)

	// Mutating the repo must not show until the cache is invalidated.
	repo.docs[0].Balance = 500
	second, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, int64(1), repo.summaryCalls.Load())

	svc.InvalidateSummary(ctx)
	third, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 500.0, third.OpenPurchaseBalance)
	require.Equal(t, int64(2), repo.summaryCalls.Load())
}
