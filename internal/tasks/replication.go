package tasks

import (
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/choreboard/choreboard/internal/models"
	"github.com/choreboard/choreboard/internal/stats"
)

const replicationBatchSize = 500

// replicatedCompletion is the denormalized row shape of the warehouse table.
type replicatedCompletion struct {
	ID            uint
	ChoreID       uint
	ChoreName     string
	FamilyID      uint
	CompletedByID uint
	Username      string
	CreatedAt     time.Time
}

// CompletionReplicationTask copies newly-approved completions from the
// primary store into the ClickHouse table the statistics gateway reads.
// Replication is append-only and resumes from the warehouse high-water mark.
type CompletionReplicationTask struct {
	db       *gorm.DB
	ch       *sql.DB
	interval time.Duration
	log      *logrus.Logger
	stopChan chan struct{}
	lastID   uint
}

// NewCompletionReplicationTask creates the replication task
func NewCompletionReplicationTask(db *gorm.DB, ch *sql.DB, interval time.Duration, log *logrus.Logger) *CompletionReplicationTask {
	return &CompletionReplicationTask{
		db:       db,
		ch:       ch,
		interval: interval,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Start runs the replication loop until Stop is called
func (t *CompletionReplicationTask) Start() {
	if err := t.ensureTable(); err != nil {
		t.log.WithError(err).Error("Failed to prepare warehouse table")
		return
	}
	if err := t.loadWatermark(); err != nil {
		t.log.WithError(err).Error("Failed to load replication watermark")
		return
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := t.replicate(); err != nil {
				t.log.WithError(err).Error("Completion replication failed")
			}
		case <-t.stopChan:
			return
		}
	}
}

// Stop signals the replication loop to exit
func (t *CompletionReplicationTask) Stop() {
	close(t.stopChan)
}

func (t *CompletionReplicationTask) ensureTable() error {
	_, err := t.ch.Exec(`CREATE TABLE IF NOT EXISTS ` + stats.WarehouseTable + ` (
		id UInt64,
		chore_id UInt64,
		chore_name String,
		family_id UInt64,
		user_id UInt64,
		username String,
		created_at DateTime
	) ENGINE = MergeTree() ORDER BY (family_id, created_at)`)
	return err
}

func (t *CompletionReplicationTask) loadWatermark() error {
	var lastID uint64
	err := t.ch.QueryRow(`SELECT max(id) FROM ` + stats.WarehouseTable).Scan(&lastID)
	if err != nil {
		return err
	}
	t.lastID = uint(lastID)
	return nil
}

func (t *CompletionReplicationTask) replicate() error {
	for {
		var batch []replicatedCompletion
		err := t.db.Table("chore_completions").
			Select(`chore_completions.id, chore_completions.chore_id, chores.name AS chore_name,
				chore_completions.family_id, chore_completions.completed_by_id, users.username,
				chore_completions.created_at`).
			Joins("JOIN chores ON chores.id = chore_completions.chore_id").
			Joins("JOIN users ON users.id = chore_completions.completed_by_id").
			Where("chore_completions.status = ? AND chore_completions.id > ?", models.StatusApproved, t.lastID).
			Order("chore_completions.id").
			Limit(replicationBatchSize).
			Scan(&batch).Error
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		for _, row := range batch {
			_, err := t.ch.Exec(`INSERT INTO `+stats.WarehouseTable+
				` (id, chore_id, chore_name, family_id, user_id, username, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				row.ID, row.ChoreID, row.ChoreName, row.FamilyID, row.CompletedByID, row.Username, row.CreatedAt)
			if err != nil {
				return err
			}
			t.lastID = row.ID
		}

		t.log.WithFields(logrus.Fields{
			"rows":   len(batch),
			"lastId": t.lastID,
		}).Debug("Replicated completions to warehouse")

		if len(batch) < replicationBatchSize {
			return nil
		}
	}
}
