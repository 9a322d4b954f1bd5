// Package store persists netmodel.StateDump snapshots to a relational
// database via gorm, so a long-running inference job can checkpoint and
// resume without replaying every MCMC sweep from scratch.
package store

import (
	"errors"
	"fmt"

	"github.com/hsbm-go/hsbm/netmodel"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite" // registers the cgo-free "sqlite" database/sql driver
)

// ErrRunNotFound indicates Load was asked for a runID with no saved rows.
var ErrRunNotFound = errors.New("store: no saved state for run")

// stateRow is the gorm model backing one StateDump row, scoped by a caller-
// chosen run identifier so a single database can hold checkpoints for many
// independent inference runs.
type stateRow struct {
	ID       uint `gorm:"primaryKey"`
	RunID    string `gorm:"index:idx_run_id;not null"`
	NodeID   string `gorm:"not null"`
	TypeName string `gorm:"not null"`
	Level    int    `gorm:"not null"`
	ParentID string
}

func (stateRow) TableName() string { return "hsbm_state_rows" }

// Store wraps a gorm.DB scoped to state-dump persistence.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if absent) a SQLite database file at path, backed by
// the pure-Go modernc.org/sqlite driver rather than a cgo sqlite3 binding,
// and migrates the state-row table.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: path}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}
	if err := db.AutoMigrate(&stateRow{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return sqlDB.Close()
}

// Save replaces any previously saved rows for runID with dump's current
// rows, inside a single transaction.
func (s *Store) Save(runID string, dump netmodel.StateDump) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", runID).Delete(&stateRow{}).Error; err != nil {
			return fmt.Errorf("store: clear previous rows: %w", err)
		}
		rows := make([]stateRow, len(dump.Rows))
		for i, r := range dump.Rows {
			rows[i] = stateRow{
				RunID:    runID,
				NodeID:   string(r.ID),
				TypeName: r.TypeName,
				Level:    r.Level,
				ParentID: string(r.ParentID),
			}
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 200).Error; err != nil {
			return fmt.Errorf("store: insert rows: %w", err)
		}
		return nil
	})
}

// Load reconstructs a netmodel.StateDump from every row saved under runID.
// types must list the network's declared type names in the same order used
// at construction, since StateDump.Types is order-sensitive.
func (s *Store) Load(runID string, types []string) (netmodel.StateDump, error) {
	var rows []stateRow
	if err := s.db.Where("run_id = ?", runID).Order("level, type_name, node_id").Find(&rows).Error; err != nil {
		return netmodel.StateDump{}, fmt.Errorf("store: query: %w", err)
	}
	if len(rows) == 0 {
		return netmodel.StateDump{}, fmt.Errorf("%w: %q", ErrRunNotFound, runID)
	}

	dump := netmodel.StateDump{Types: append([]string(nil), types...)}
	for _, r := range rows {
		dump.Rows = append(dump.Rows, netmodel.StateRow{
			ID:       netmodel.NodeID(r.NodeID),
			TypeName: r.TypeName,
			Level:    r.Level,
			ParentID: netmodel.NodeID(r.ParentID),
		})
	}
	return dump, nil
}

// ListRuns returns every distinct runID with saved rows.
func (s *Store) ListRuns() ([]string, error) {
	var ids []string
	if err := s.db.Model(&stateRow{}).Distinct().Pluck("run_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return ids, nil
}
