package session

import "questline/internal/models"

// Transitions are pure: each takes the current SessionState value plus inputs
// and returns the next value. The controller is the only caller; the shell
// observes whole-state replacement.

const stageCount = 3

// progressForStage derives a percent from a stage number when the reply does
// not carry an explicit one.
func progressForStage(stage int) float64 {
	return float64(stage-1) / stageCount * 100
}

// resolveCompletedStage picks the stage a completing reply refers to. Without
// an explicit completed stage, stage 1 wraps back to 3. The wrap assumes a
// three-stage catalog; see DESIGN.md.
func resolveCompletedStage(reply *models.TurnReply, currentStage int) int {
	if reply.CompletedStage != nil {
		return *reply.CompletedStage
	}
	stage := currentStage
	if reply.Stage != nil {
		stage = *reply.Stage
	}
	if stage == 1 {
		return stageCount
	}
	return stage - 1
}

func applyLoad(st models.SessionState, snap *models.StatusSnapshot, page *models.HistoryPage, entries []models.TranscriptEntry, suggestions []string) models.SessionState {
	st.Transcript = entries
	st.Loading = false
	st.CurrentStage = snap.CurrentStage
	st.ProgressPercent = snap.ProgressPercent
	st.MissionText = snap.MissionText
	st.Suggestions = suggestions
	st.NarratorAvatar = page.NarratorAvatar
	st.NarratorBackground = page.NarratorBackground
	return st
}

func applySendStart(st models.SessionState, entries []models.TranscriptEntry) models.SessionState {
	st.Transcript = entries
	st.IsTyping = true
	st.Suggestions = nil
	return st
}

// applyReply folds a successful narrator reply into the state. The reward
// amount is the balance delta against balanceBefore; a server-supplied reward
// field is never trusted when a balance is available.
func applyReply(st models.SessionState, reply *models.TurnReply, entries []models.TranscriptEntry, balanceBefore int) models.SessionState {
	st.Transcript = entries
	st.InsufficientEnergy = false

	if reply.Stage != nil {
		st.CurrentStage = *reply.Stage
		if reply.ProgressPercent != nil {
			st.ProgressPercent = *reply.ProgressPercent
		} else {
			st.ProgressPercent = progressForStage(*reply.Stage)
		}
	} else if reply.ProgressPercent != nil {
		st.ProgressPercent = *reply.ProgressPercent
	}
	if reply.MissionText != nil {
		st.MissionText = *reply.MissionText
	}

	if reply.MissionCompleted {
		amount := 0
		if reply.NewBalance != nil {
			amount = *reply.NewBalance - balanceBefore
		}
		st.Reward = &models.StageReward{
			StageOrderIndex: resolveCompletedStage(reply, st.CurrentStage),
			RewardAmount:    amount,
		}
	}

	if len(reply.Suggestions) > 0 {
		chips := make([]string, len(reply.Suggestions))
		copy(chips, reply.Suggestions)
		st.Suggestions = chips
	} else {
		st.Suggestions = nil
	}
	return st
}

func applySendFailure(st models.SessionState, entries []models.TranscriptEntry, insufficient bool) models.SessionState {
	st.Transcript = entries
	if insufficient {
		st.InsufficientEnergy = true
	}
	return st
}

func applyClear(st models.SessionState) models.SessionState {
	return models.SessionState{
		CurrentStage:    1,
		ProgressPercent: 0,
	}
}
