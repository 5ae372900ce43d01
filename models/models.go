// models/models.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchHistory is the finalized record handed to persistence once per
// completed match.
type MatchHistory struct {
	ID             uuid.UUID `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	EndedAt        time.Time `json:"ended_at"`
	ParticipantIDs []string  `json:"participant_ids"`
}
