package models

import "time"

// Mission is one phase of the scripted narrative. The catalog is immutable
// for the lifetime of a session.
type Mission struct {
	ID                   int64  `yaml:"id"`
	OrderIndex           int    `yaml:"order_index"` // 1-based, unique, ascending
	Title                string `yaml:"title"`
	Description          string `yaml:"description"`
	LocalizedTitle       string `yaml:"localized_title,omitempty"`
	LocalizedDescription string `yaml:"localized_description,omitempty"`
	IntroVideoRef        string `yaml:"intro_video,omitempty"`
}

// HistoryTurn is a persisted chat turn as returned by the history service.
// MissionID is zero when the turn is not tagged with a mission.
type HistoryTurn struct {
	ID         string
	IsUser     bool
	Content    string
	MissionID  int64
	CreatedAt  time.Time
	Completion bool // narrator signalled mission completion in this turn
}

// HistoryPage is one (possibly partial) load of persisted history.
type HistoryPage struct {
	Turns              []HistoryTurn
	NarratorAvatar     string
	NarratorBackground string
}

// StatusSnapshot is the server's view of where the user is in the narrative.
// It supersedes any locally derived stage on every refresh.
type StatusSnapshot struct {
	CurrentStage    int
	ProgressPercent float64
	MissionText     string
	Catalog         []Mission
}

// TranscriptEntry is one render-ready unit of the reconciled transcript:
// either a MissionCard or a Turn.
type TranscriptEntry interface {
	transcriptEntry()
}

// MissionCard introduces a mission inside the transcript. At most one card
// per mission may exist in the transcript at any time.
type MissionCard struct {
	MissionID            int64
	OrderIndex           int
	Title                string
	Description          string
	HasFollowingMessages bool
}

// Turn is one message exchange unit. Pending marks an optimistic user turn
// that has not yet been confirmed by the narrator reply.
type Turn struct {
	ID         string
	Text       string
	IsUser     bool
	Timestamp  time.Time
	MissionID  int64
	Completion bool
	Pending    bool
}

func (MissionCard) transcriptEntry() {}
func (Turn) transcriptEntry()        {}

// TurnReply is the structured narrator response to a sent turn. Optional
// fields are pointers; absence means "no change".
type TurnReply struct {
	Content          string
	NewEnergy        *int
	NewBalance       *int
	Stage            *int
	ProgressPercent  *float64
	MissionText      *string
	MissionCompleted bool
	CompletedStage   *int
	Suggestions      []string
}

// StageReward is the currency grant raised when a mission completes. It stays
// set after acknowledgement so the shell can animate its dismissal.
type StageReward struct {
	StageOrderIndex int
	RewardAmount    int
	Acknowledged    bool
}

// SuggestionRecord is the persisted chip set, tied to the narrator turn it
// was offered after. Chips from another turn are never restored.
type SuggestionRecord struct {
	TurnID string   `yaml:"turn_id"`
	Chips  []string `yaml:"chips"`
}

// SessionState is the full observable state of one narrative session.
// It is replaced as a value on every transition, never mutated in place.
type SessionState struct {
	Transcript         []TranscriptEntry
	IsTyping           bool
	Loading            bool
	CurrentStage       int
	ProgressPercent    float64
	MissionText        string
	Suggestions        []string
	Reward             *StageReward
	InsufficientEnergy bool
	NarratorAvatar     string
	NarratorBackground string
}
