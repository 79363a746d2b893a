package session

import "questline/internal/models"

// TurnLog is the append-only in-memory transcript owned by the controller.
// Entries returns defensive copies so published SessionState values stay
// immutable.
type TurnLog struct {
	entries []models.TranscriptEntry
}

func NewTurnLog() *TurnLog {
	return &TurnLog{}
}

// Replace installs a freshly reconciled transcript, discarding the old one.
func (l *TurnLog) Replace(entries []models.TranscriptEntry) {
	l.entries = make([]models.TranscriptEntry, len(entries))
	copy(l.entries, entries)
}

func (l *TurnLog) Append(e models.TranscriptEntry) {
	l.entries = append(l.entries, e)
}

func (l *TurnLog) Clear() {
	l.entries = nil
}

func (l *TurnLog) Len() int {
	return len(l.entries)
}

func (l *TurnLog) Entries() []models.TranscriptEntry {
	out := make([]models.TranscriptEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// HasMissionCard reports whether a card for the mission is already present.
func (l *TurnLog) HasMissionCard(missionID int64) bool {
	for _, e := range l.entries {
		if c, ok := e.(models.MissionCard); ok && c.MissionID == missionID {
			return true
		}
	}
	return false
}

// LastNarratorTurn returns the most recent non-user turn, or nil.
func (l *TurnLog) LastNarratorTurn() *models.Turn {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if t, ok := l.entries[i].(models.Turn); ok && !t.IsUser {
			return &t
		}
	}
	return nil
}

// ConfirmTurn clears the pending flag on the turn with the given ID.
func (l *TurnLog) ConfirmTurn(id string) {
	for i, e := range l.entries {
		if t, ok := e.(models.Turn); ok && t.ID == id {
			t.Pending = false
			l.entries[i] = t
			return
		}
	}
}
