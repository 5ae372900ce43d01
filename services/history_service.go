// services/history_service.go
package services

import (
	"github.com/wfunc/daifugo/models"
	"github.com/wfunc/daifugo/persistence"
)

// HistoryService fronts the match-history store for the room manager and the
// ops RPC surface.
type HistoryService struct {
	db persistence.Database
}

func NewHistoryService(db persistence.Database) *HistoryService {
	return &HistoryService{db: db}
}

// RecordMatch persists one finalized match record.
func (s *HistoryService) RecordMatch(h *models.MatchHistory) error {
	return s.db.SaveMatchHistory(h)
}

// RecentMatches returns the most recently finished matches, newest first.
func (s *HistoryService) RecentMatches(limit int) ([]models.MatchHistory, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.db.ListMatchHistory(limit)
}
