// Package transcript merges the mission catalog, raw persisted history and the
// current status snapshot into the ordered, render-ready transcript.
package transcript

import (
	"sort"

	"questline/internal/models"
)

// missionGroup collects the loaded turns of one mission and whether its last
// turn carries the completion signal.
type missionGroup struct {
	turns     []models.HistoryTurn
	completed bool
}

// Reconcile produces the full transcript for the given inputs. It is pure and
// deterministic: the same inputs always yield the same output, so it can be
// re-run safely on every reload.
//
// Mission cards are emitted in ascending order index, each followed by that
// mission's turns in ascending creation time. A card renders only when the
// mission has loaded messages, or the previous mission completed, or the
// session is fresh (first mission, no history). Missions older than the first
// loaded message are skipped so a partial history load never renders empty
// cards for pages that simply were not fetched.
func Reconcile(missions []models.Mission, history []models.HistoryTurn, currentStage int) []models.TranscriptEntry {
	_ = currentStage // reserved; eligibility is derived from history alone

	ordered := make([]models.Mission, len(missions))
	copy(ordered, missions)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].OrderIndex < ordered[j].OrderIndex })

	sortedTurns := make([]models.HistoryTurn, len(history))
	copy(sortedTurns, history)
	sort.SliceStable(sortedTurns, func(i, j int) bool {
		return sortedTurns[i].CreatedAt.Before(sortedTurns[j].CreatedAt)
	})

	known := make(map[int64]bool, len(ordered))
	for _, m := range ordered {
		known[m.ID] = true
	}

	// Turns referencing a mission outside the catalog are dropped rather than
	// rendered as orphans.
	groups := make(map[int64]*missionGroup)
	for _, t := range sortedTurns {
		if !known[t.MissionID] {
			continue
		}
		g, ok := groups[t.MissionID]
		if !ok {
			g = &missionGroup{}
			groups[t.MissionID] = g
		}
		g.turns = append(g.turns, t)
		g.completed = t.Completion
	}

	// Smallest order index that has any loaded message. Missions strictly
	// before it belong to unfetched history pages.
	minOrderWithMessages := 0
	for _, m := range ordered {
		if g, ok := groups[m.ID]; ok && len(g.turns) > 0 {
			minOrderWithMessages = m.OrderIndex
			break
		}
	}

	var out []models.TranscriptEntry
	prevCompleted := false
	for i, m := range ordered {
		g := groups[m.ID]
		hasTurns := g != nil && len(g.turns) > 0
		first := i == 0

		eligible := hasTurns || prevCompleted ||
			(first && len(groups) == 0) ||
			(first && minOrderWithMessages > 0 && m.OrderIndex >= minOrderWithMessages)

		if eligible {
			out = append(out, models.MissionCard{
				MissionID:            m.ID,
				OrderIndex:           m.OrderIndex,
				Title:                m.Title,
				Description:          m.Description,
				HasFollowingMessages: hasTurns,
			})
			if hasTurns {
				for _, t := range g.turns {
					out = append(out, models.Turn{
						ID:         t.ID,
						Text:       t.Content,
						IsUser:     t.IsUser,
						Timestamp:  t.CreatedAt,
						MissionID:  t.MissionID,
						Completion: t.Completion,
					})
				}
			}
		}

		prevCompleted = g != nil && g.completed
	}
	return out
}
