package journals

import (
	"context"
	"errors"
	"fmt"
	"time"

	internalShared "github.com/meridian-erp/meridian-erp/internal/shared"
)

// AuditPort records who posted what.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// RepositoryPort defines data access methods for journals.
type RepositoryPort interface {
	List(ctx context.Context) ([]JournalEntry, error)
	GetWithLines(ctx context.Context, entryID int64) (JournalEntry, error)
	Post(ctx context.Context, in PostingInput) (JournalEntry, error)
}

type Service struct {
	repo  RepositoryPort
	audit AuditPort
	now   func() time.Time
}

func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) List(ctx context.Context) ([]JournalEntry, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, entryID int64) (JournalEntry, error) {
	if entryID == 0 {
		return JournalEntry{}, errors.New("accounting: entry id required")
	}
	return s.repo.GetWithLines(ctx, entryID)
}

// PostJournal validates and persists a manual journal entry.
func (s *Service) PostJournal(ctx context.Context, input PostingInput) (JournalEntry, error) {
	if err := input.Validate(); err != nil {
		return JournalEntry{}, err
	}
	if input.Date.IsZero() {
		input.Date = s.now()
	}
	entry, err := s.repo.Post(ctx, input)
	if err != nil {
		return JournalEntry{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			ActorID:  input.PostedBy,
			Action:   "journal.post",
			Entity:   "journal_entry",
			EntityID: fmt.Sprintf("%d", entry.ID),
			Meta: map[string]any{
				"reference":     entry.Reference,
				"source_module": input.SourceModule,
				"source_id":     input.SourceID.String(),
			},
			At: s.now(),
		})
	}
	return entry, nil
}
