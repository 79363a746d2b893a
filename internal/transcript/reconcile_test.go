package transcript

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questline/internal/models"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func threeMissions() []models.Mission {
	return []models.Mission{
		{ID: 1, OrderIndex: 1, Title: "First Contact", Description: "Say hello."},
		{ID: 2, OrderIndex: 2, Title: "The Favor", Description: "Help out."},
		{ID: 3, OrderIndex: 3, Title: "The Reveal", Description: "Learn the truth."},
	}
}

func turn(id string, missionID int64, user bool, offset time.Duration, completion bool) models.HistoryTurn {
	return models.HistoryTurn{
		ID:         id,
		IsUser:     user,
		Content:    "msg " + id,
		MissionID:  missionID,
		CreatedAt:  base.Add(offset),
		Completion: completion,
	}
}

func cardIDs(entries []models.TranscriptEntry) []int64 {
	var ids []int64
	for _, e := range entries {
		if c, ok := e.(models.MissionCard); ok {
			ids = append(ids, c.MissionID)
		}
	}
	return ids
}

func TestReconcileFreshSession(t *testing.T) {
	out := Reconcile(threeMissions(), nil, 1)

	require.Len(t, out, 1)
	card, ok := out[0].(models.MissionCard)
	require.True(t, ok)
	assert.Equal(t, int64(1), card.MissionID)
	assert.Equal(t, 1, card.OrderIndex)
	assert.False(t, card.HasFollowingMessages)
}

func TestReconcileIdempotent(t *testing.T) {
	history := []models.HistoryTurn{
		turn("b", 1, false, 2*time.Minute, true),
		turn("a", 1, true, time.Minute, false),
		turn("c", 2, true, 3*time.Minute, false),
	}

	first := Reconcile(threeMissions(), history, 2)
	second := Reconcile(threeMissions(), history, 2)
	assert.Equal(t, first, second)
}

func TestReconcilePartialLoadSkipsEarlierMissions(t *testing.T) {
	history := []models.HistoryTurn{
		turn("a", 2, true, time.Minute, false),
		turn("b", 2, false, 2*time.Minute, false),
	}

	out := Reconcile(threeMissions(), history, 2)

	ids := cardIDs(out)
	assert.NotContains(t, ids, int64(1), "mission before the first loaded message must not render")
	require.Contains(t, ids, int64(2))

	card, ok := out[0].(models.MissionCard)
	require.True(t, ok)
	assert.Equal(t, int64(2), card.MissionID)
	assert.True(t, card.HasFollowingMessages)
}

func TestReconcileNoDuplicateCards(t *testing.T) {
	history := []models.HistoryTurn{
		turn("a", 1, true, time.Minute, false),
		turn("b", 1, false, 2*time.Minute, true),
		turn("c", 2, true, 3*time.Minute, false),
		turn("d", 2, false, 4*time.Minute, true),
		turn("e", 3, true, 5*time.Minute, false),
	}

	out := Reconcile(threeMissions(), history, 3)

	seen := make(map[int64]int)
	for _, id := range cardIDs(out) {
		seen[id]++
	}
	for id, n := range seen {
		assert.Equalf(t, 1, n, "mission %d has %d cards", id, n)
	}
}

func TestReconcileOrdering(t *testing.T) {
	// Arrival order deliberately scrambled; creation time is authoritative.
	history := []models.HistoryTurn{
		turn("m2-late", 2, false, 10*time.Minute, false),
		turn("m1-late", 1, false, 4*time.Minute, true),
		turn("m1-early", 1, true, time.Minute, false),
		turn("m2-early", 2, true, 8*time.Minute, false),
	}

	out := Reconcile(threeMissions(), history, 2)

	var sequence []string
	for _, e := range out {
		switch v := e.(type) {
		case models.MissionCard:
			sequence = append(sequence, "card")
		case models.Turn:
			sequence = append(sequence, v.ID)
		}
	}
	assert.Equal(t, []string{"card", "m1-early", "m1-late", "card", "m2-early", "m2-late"}, sequence)
}

func TestReconcileCompletionUnlocksNextCard(t *testing.T) {
	history := []models.HistoryTurn{
		turn("a", 1, true, time.Minute, false),
		turn("b", 1, false, 2*time.Minute, true),
	}

	out := Reconcile(threeMissions(), history, 2)

	ids := cardIDs(out)
	assert.Equal(t, []int64{1, 2}, ids, "completed mission 1 should bridge to mission 2, not 3")

	last, ok := out[len(out)-1].(models.MissionCard)
	require.True(t, ok)
	assert.Equal(t, int64(2), last.MissionID)
	assert.False(t, last.HasFollowingMessages)
}

func TestReconcileIncompleteMissionBlocksNext(t *testing.T) {
	history := []models.HistoryTurn{
		turn("a", 1, true, time.Minute, false),
		turn("b", 1, false, 2*time.Minute, false),
	}

	out := Reconcile(threeMissions(), history, 1)
	assert.Equal(t, []int64{1}, cardIDs(out))
}

func TestReconcileDropsUnknownMissionTurns(t *testing.T) {
	history := []models.HistoryTurn{
		turn("ghost", 99, true, time.Minute, false),
	}

	out := Reconcile(threeMissions(), history, 1)

	for _, e := range out {
		if v, ok := e.(models.Turn); ok {
			t.Fatalf("orphan turn rendered: %v", v.ID)
		}
	}
	assert.Equal(t, []int64{1}, cardIDs(out))
}

func TestReconcileEmptyCatalog(t *testing.T) {
	out := Reconcile(nil, []models.HistoryTurn{turn("a", 1, true, 0, false)}, 1)
	assert.Empty(t, out)
}
