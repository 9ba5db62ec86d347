package proposal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUnitOutcome(t *testing.T) {
	for name, tc := range map[string]struct {
		votesFor     int64
		votesAgainst int64
		quorum       int64
		expected     Status
	}{
		"below quorum despite strong support": {
			votesFor:     45000,
			votesAgainst: 12000,
			quorum:       100000,
			expected:     StatusRejected,
		},
		"quorum reached with majority": {
			votesFor:     125000,
			votesAgainst: 45000,
			quorum:       100000,
			expected:     StatusPassed,
		},
		"exactly at quorum passes": {
			votesFor:     60000,
			votesAgainst: 40000,
			quorum:       100000,
			expected:     StatusPassed,
		},
		"one vote short of quorum": {
			votesFor:     60000,
			votesAgainst: 39999,
			quorum:       100000,
			expected:     StatusRejected,
		},
		"tie with quorum met": {
			votesFor:     50000,
			votesAgainst: 50000,
			quorum:       100000,
			expected:     StatusRejected,
		},
		"majority against": {
			votesFor:     40000,
			votesAgainst: 70000,
			quorum:       100000,
			expected:     StatusRejected,
		},
		"no votes at all": {
			quorum:   100000,
			expected: StatusRejected,
		},
	} {
		t.Run(name, func(t *testing.T) {
			p := Proposal{
				VotesFor:     tc.votesFor,
				VotesAgainst: tc.votesAgainst,
				TotalVotes:   tc.votesFor + tc.votesAgainst,
				Quorum:       tc.quorum,
			}

			require.Equal(t, tc.expected, p.Outcome())
		})
	}
}

func TestUnitAccepting(t *testing.T) {
	now := time.Now()

	base := Proposal{
		Status:    StatusActive,
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
	}

	t.Run("inside window", func(t *testing.T) {
		require.True(t, base.Accepting(now))
	})

	t.Run("exactly at start", func(t *testing.T) {
		require.True(t, base.Accepting(base.StartDate))
	})

	t.Run("exactly at end", func(t *testing.T) {
		require.False(t, base.Accepting(base.EndDate))
	})

	t.Run("before start", func(t *testing.T) {
		require.False(t, base.Accepting(base.StartDate.Add(-time.Minute)))
	})

	t.Run("wrong status", func(t *testing.T) {
		p := base
		p.Status = StatusPassed
		require.False(t, p.Accepting(now))
	})
}

func TestUnitCategoryValid(t *testing.T) {
	for _, c := range []Category{CategoryProtocol, CategoryTreasury, CategoryRisk, CategoryAsset, CategoryCommunity} {
		require.True(t, c.Valid())
	}

	require.False(t, Category("marketing").Valid())
	require.False(t, Category("").Valid())
}
