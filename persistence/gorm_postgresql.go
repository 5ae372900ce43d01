// persistence/gorm_postgresql.go
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/daifugo/models"
)

// GormPostgreSQL stores match history through GORM.
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL opens the connection and migrates the history table.
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&MatchHistoryModel{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// MatchHistoryModel is the persisted shape of a finalized match.
type MatchHistoryModel struct {
	ID             uint           `gorm:"primaryKey"`
	MatchID        string         `gorm:"uniqueIndex;not null"`
	StartedAt      time.Time      `gorm:"not null"`
	EndedAt        time.Time      `gorm:"not null"`
	ParticipantIDs pq.StringArray `gorm:"type:text[];not null"`
	CreatedAt      time.Time
}

// SaveMatchHistory inserts one finalized record.
func (p *GormPostgreSQL) SaveMatchHistory(h *models.MatchHistory) error {
	record := MatchHistoryModel{
		MatchID:        h.ID.String(),
		StartedAt:      h.CreatedAt,
		EndedAt:        h.EndedAt,
		ParticipantIDs: pq.StringArray(h.ParticipantIDs),
	}
	return p.db.Create(&record).Error
}

// ListMatchHistory returns the most recent records, newest first.
func (p *GormPostgreSQL) ListMatchHistory(limit int) ([]models.MatchHistory, error) {
	var rows []MatchHistoryModel
	if err := p.db.Order("ended_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toHistories(rows)
}

func toHistories(rows []MatchHistoryModel) ([]models.MatchHistory, error) {
	out := make([]models.MatchHistory, 0, len(rows))
	for _, row := range rows {
		matchID, err := uuid.Parse(row.MatchID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.MatchHistory{
			ID:             matchID,
			CreatedAt:      row.StartedAt,
			EndedAt:        row.EndedAt,
			ParticipantIDs: []string(row.ParticipantIDs),
		})
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
