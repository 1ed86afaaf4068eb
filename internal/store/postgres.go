package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hotseatlive/hotseat-backend/internal/engine"
)

// snapshotRow is the durable form of a Snapshot: the aggregate is one
// JSON document so each save is a single transactional upsert.
type snapshotRow struct {
	Code      string `gorm:"primaryKey;size:16"`
	Version   int
	State     []byte `gorm:"type:jsonb"`
	UpdatedAt time.Time
}

func (snapshotRow) TableName() string { return "game_snapshots" }

type PostgresStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewPostgresStore(dsn string, log *zap.Logger) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&snapshotRow{}); err != nil {
		return nil, fmt.Errorf("migrate snapshots: %w", err)
	}
	return &PostgresStore{db: db, log: log}, nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap.State)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	row := snapshotRow{Code: snap.Code, Version: snap.Version, State: payload, UpdatedAt: time.Now()}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"version", "state", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.Code, err)
	}
	s.log.Debug("snapshot saved", zap.String("code", snap.Code), zap.Int("version", snap.Version))
	return nil
}

func (s *PostgresStore) LoadSnapshot(ctx context.Context, code string) (Snapshot, error) {
	var row snapshotRow
	err := s.db.WithContext(ctx).First(&row, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot %s: %w", code, err)
	}

	var state engine.State
	if err := json.Unmarshal(row.State, &state); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot %s: %w", code, err)
	}
	return Snapshot{Code: row.Code, Version: row.Version, State: state}, nil
}
