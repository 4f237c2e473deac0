package journals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/accounting/shared"
)

type memoryJournalRepo struct {
	entries map[int64]JournalEntry
	nextID  int64
}

func newMemoryJournalRepo() *memoryJournalRepo {
	return &memoryJournalRepo{entries: make(map[int64]JournalEntry)}
}

func (r *memoryJournalRepo) List(ctx context.Context) ([]JournalEntry, error) {
	var out []JournalEntry
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryJournalRepo) GetWithLines(ctx context.Context, entryID int64) (JournalEntry, error) {
	e, ok := r.entries[entryID]
	if !ok {
		return JournalEntry{}, shared.ErrJournalNotFound
	}
	return e, nil
}

func (r *memoryJournalRepo) Post(ctx context.Context, in PostingInput) (JournalEntry, error) {
	if err := in.Validate(); err != nil {
		return JournalEntry{}, err
	}
	r.nextID++
	entry := JournalEntry{
		ID:           r.nextID,
		Date:         in.Date,
		Reference:    in.Reference,
		Memo:         in.Memo,
		SourceModule: in.SourceModule,
		SourceID:     in.SourceID,
		PostedBy:     in.PostedBy,
		CreatedAt:    time.Now(),
	}
	for _, line := range in.Lines {
		entry.Lines = append(entry.Lines, JournalLine{
			JournalID: entry.ID,
			AccountID: line.AccountID,
			Debit:     line.Debit,
			Credit:    line.Credit,
		})
	}
	r.entries[entry.ID] = entry
	return entry, nil
}

func validPosting() PostingInput {
	return PostingInput{
		Date:         time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Reference:    "FP-00000001",
		Memo:         "purchase settlement",
		SourceModule: "FACTORING",
		SourceID:     uuid.New(),
		PostedBy:     7,
		Lines: []PostingLineInput{
			{AccountID: 1, Debit: 1000},
			{AccountID: 2, Credit: 950},
			{AccountID: 3, Credit: 50},
		},
	}
}

func TestPostJournal(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryJournalRepo()
	svc := NewService(repo, nil)

	entry, err := svc.PostJournal(ctx, validPosting())
	require.NoError(t, err)
	require.Equal(t, "FP-00000001", entry.Reference)
	require.Len(t, entry.Lines, 3)

	var debit, credit float64
	for _, line := range entry.Lines {
		debit += line.Debit
		credit += line.Credit
	}
	require.Equal(t, debit, credit)
}

func TestPostJournalRejectsUnbalanced(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryJournalRepo(), nil)

	in := validPosting()
	in.Lines[1].Credit = 900
	_, err := svc.PostJournal(ctx, in)
	require.ErrorIs(t, err, shared.ErrUnbalanced)
}

func TestPostJournalRejectsTwoSidedLine(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryJournalRepo(), nil)

	in := validPosting()
	in.Lines[0].Credit = 10
	_, err := svc.PostJournal(ctx, in)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot be both debit and credit")
}

func TestPostJournalRejectsEmptyLine(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryJournalRepo(), nil)

	in := validPosting()
	in.Lines = append(in.Lines, PostingLineInput{AccountID: 4})
	_, err := svc.PostJournal(ctx, in)
	require.Error(t, err)
	require.Contains(t, err.Error(), "has no amount")
}

func TestPostJournalRequiresTwoLines(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryJournalRepo(), nil)

	in := validPosting()
	in.Lines = in.Lines[:1]
	in.Lines[0].Debit = 0
	in.Lines[0].Credit = 0
	_, err := svc.PostJournal(ctx, in)
	require.ErrorIs(t, err, shared.ErrTooFewLines)
}

func TestReversedLinesSwapSides(t *testing.T) {
	lines := []JournalLine{
		{AccountID: 1, Debit: 1000},
		{AccountID: 2, Credit: 950},
		{AccountID: 3, Credit: 50},
	}
	mirrored := ReversedLines(lines)
	require.Len(t, mirrored, 3)
	require.Equal(t, 1000.0, mirrored[0].Credit)
	require.Equal(t, 0.0, mirrored[0].Debit)
	require.Equal(t, 950.0, mirrored[1].Debit)
	require.Equal(t, 50.0, mirrored[2].Debit)

	// A mirrored set of balanced lines must itself balance.
	var debit, credit float64
	for _, l := range mirrored {
		debit += l.Debit
		credit += l.Credit
	}
	require.Equal(t, debit, credit)
}

func TestGetJournalNotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryJournalRepo(), nil)

	_, err := svc.Get(ctx, 99)
	require.ErrorIs(t, err, shared.ErrJournalNotFound)
}
