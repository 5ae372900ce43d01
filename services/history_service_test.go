// services/history_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/daifugo/models"
)

type fakeDatabase struct {
	saved     []*models.MatchHistory
	lastLimit int
}

func (f *fakeDatabase) SaveMatchHistory(h *models.MatchHistory) error {
	f.saved = append(f.saved, h)
	return nil
}

func (f *fakeDatabase) ListMatchHistory(limit int) ([]models.MatchHistory, error) {
	f.lastLimit = limit
	out := make([]models.MatchHistory, 0, len(f.saved))
	for _, h := range f.saved {
		out = append(out, *h)
	}
	return out, nil
}

func (f *fakeDatabase) Close() error { return nil }

func TestRecordAndList(t *testing.T) {
	db := &fakeDatabase{}
	svc := NewHistoryService(db)

	h := &models.MatchHistory{
		ID:             uuid.New(),
		CreatedAt:      time.Now(),
		EndedAt:        time.Now(),
		ParticipantIDs: []string{uuid.New().String()},
	}
	if err := svc.RecordMatch(h); err != nil {
		t.Fatalf("RecordMatch: %v", err)
	}

	got, err := svc.RecentMatches(5)
	if err != nil {
		t.Fatalf("RecentMatches: %v", err)
	}
	if len(got) != 1 || got[0].ID != h.ID {
		t.Errorf("RecentMatches = %+v", got)
	}
	if db.lastLimit != 5 {
		t.Errorf("limit = %d, want 5", db.lastLimit)
	}
}

func TestRecentMatchesDefaultLimit(t *testing.T) {
	db := &fakeDatabase{}
	svc := NewHistoryService(db)

	if _, err := svc.RecentMatches(0); err != nil {
		t.Fatal(err)
	}
	if db.lastLimit != 20 {
		t.Errorf("limit = %d, want the default 20", db.lastLimit)
	}
}
