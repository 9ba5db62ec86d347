package proposal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "proposals.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&Proposal{}))

	return db
}

func seedEnded(t *testing.T, db *gorm.DB, votesFor, votesAgainst, quorum int64) Proposal {
	t.Helper()

	now := time.Now()
	p := Proposal{
		ID:           uuid.New(),
		Title:        "Adjust interest rate model",
		Category:     CategoryProtocol,
		Proposer:     "0xproposer",
		Status:       StatusActive,
		VotesFor:     votesFor,
		VotesAgainst: votesAgainst,
		TotalVotes:   votesFor + votesAgainst,
		Quorum:       quorum,
		StartDate:    now.Add(-72 * time.Hour),
		EndDate:      now.Add(-time.Minute),
	}
	require.NoError(t, db.Create(&p).Error)

	return p
}

func TestRepoResolve(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)

	passing := seedEnded(t, db, 125000, 45000, 100000)
	belowQuorum := seedEnded(t, db, 45000, 12000, 100000)

	ok, err := repo.Resolve(passing.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.Resolve(belowQuorum.ID)
	require.NoError(t, err)
	require.True(t, ok)

	stored, err := repo.GetByID(passing.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPassed, stored.Status)

	stored, err = repo.GetByID(belowQuorum.ID)
	require.NoError(t, err)
	require.Equal(t, StatusRejected, stored.Status)

	// a second sweep finds nothing to transition
	ok, err = repo.Resolve(passing.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRepoResolveCountsLateBallots(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)

	p := seedEnded(t, db, 0, 0, 100000)

	// tally moves after the sweep picked the proposal up
	err := db.
		Model(&Proposal{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"votes_for":   125000,
			"total_votes": 125000,
		}).
		Error
	require.NoError(t, err)

	ok, err := repo.Resolve(p.ID)
	require.NoError(t, err)
	require.True(t, ok)

	stored, err := repo.GetByID(p.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPassed, stored.Status)
}

func TestRepoTransitionStatus(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)

	p := seedEnded(t, db, 0, 0, 100000)
	require.NoError(t, db.Model(&Proposal{}).Where("id = ?", p.ID).Update("status", StatusPending).Error)

	ok, err := repo.TransitionStatus(p.ID, StatusPending, StatusActive, nil)
	require.NoError(t, err)
	require.True(t, ok)

	// the guard refuses a transition from a state the row is no longer in
	ok, err = repo.TransitionStatus(p.ID, StatusPending, StatusActive, nil)
	require.NoError(t, err)
	require.False(t, ok)
}
