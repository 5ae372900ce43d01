// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/wfunc/daifugo/models"
)

// PostgreSQL stores match history over database/sql with the pq driver.
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL opens the connection and initializes the history table.
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS match_histories (
            id SERIAL PRIMARY KEY,
            match_id UUID UNIQUE NOT NULL,
            started_at TIMESTAMP NOT NULL,
            ended_at TIMESTAMP NOT NULL,
            participant_ids TEXT[] NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	return err
}

// SaveMatchHistory inserts one finalized record.
func (p *PostgreSQL) SaveMatchHistory(h *models.MatchHistory) error {
	_, err := p.db.Exec(`
        INSERT INTO match_histories (match_id, started_at, ended_at, participant_ids)
        VALUES ($1, $2, $3, $4)
    `, h.ID.String(), h.CreatedAt, h.EndedAt, pq.Array(h.ParticipantIDs))
	return err
}

// ListMatchHistory returns the most recent records, newest first.
func (p *PostgreSQL) ListMatchHistory(limit int) ([]models.MatchHistory, error) {
	rows, err := p.db.Query(`
        SELECT match_id, started_at, ended_at, participant_ids
        FROM match_histories
        ORDER BY ended_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MatchHistory
	for rows.Next() {
		var (
			matchID      string
			startedAt    time.Time
			endedAt      time.Time
			participants pq.StringArray
		)
		if err := rows.Scan(&matchID, &startedAt, &endedAt, &participants); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(matchID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.MatchHistory{
			ID:             id,
			CreatedAt:      startedAt,
			EndedAt:        endedAt,
			ParticipantIDs: []string(participants),
		})
	}
	return out, rows.Err()
}

// Close releases the connection pool.
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
