// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/wfunc/daifugo/models"
)

// Database stores finalized match-history records. The core hands one record
// over per completed match and never reads it back on the hot path.
type Database interface {
	SaveMatchHistory(h *models.MatchHistory) error
	ListMatchHistory(limit int) ([]models.MatchHistory, error)
	Close() error
}

var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
