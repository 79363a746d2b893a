// Command simulate drives the progression controller through a scripted
// three-mission playthrough against an offline narrator, printing the
// transcript and reward events as they happen. Useful for eyeballing the
// full loop without an API key.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"questline/internal/catalog"
	"questline/internal/chips"
	"questline/internal/history"
	"questline/internal/models"
	"questline/internal/session"
)

type scriptedStep struct {
	reply models.TurnReply
}

// scriptedNarrator returns canned replies in order, completing one mission
// every second turn.
type scriptedNarrator struct {
	steps []scriptedStep
	next  int
}

func (s *scriptedNarrator) Send(ctx context.Context, text string) (*models.TurnReply, error) {
	if s.next >= len(s.steps) {
		return &models.TurnReply{Content: "The story has ended."}, nil
	}
	reply := s.steps[s.next].reply
	s.next++
	return &reply, nil
}

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func script() []scriptedStep {
	return []scriptedStep{
		{reply: models.TurnReply{
			Content:     "Hello, stranger. I have been waiting for you.",
			MissionText: strp("Introduce yourself."),
			Suggestions: []string{"Who are you?", "Hello!"},
		}},
		{reply: models.TurnReply{
			Content:          "So we meet at last. The first step is behind us.",
			Stage:            intp(2),
			MissionCompleted: true,
			CompletedStage:   intp(1),
			NewBalance:       intp(140),
			NewEnergy:        intp(90),
		}},
		{reply: models.TurnReply{
			Content:     "I need you to find the old key. Will you help me?",
			MissionText: strp("Agree to help the narrator."),
			Suggestions: []string{"I will help.", "What key?"},
		}},
		{reply: models.TurnReply{
			Content:          "You found it. I knew I could trust you.",
			Stage:            intp(3),
			MissionCompleted: true,
			CompletedStage:   intp(2),
			NewBalance:       intp(200),
			NewEnergy:        intp(80),
		}},
		{reply: models.TurnReply{
			Content:          "And now you know everything. Farewell.",
			Stage:            intp(1),
			MissionCompleted: true,
			NewBalance:       intp(300),
			NewEnergy:        intp(70),
		}},
	}
}

func main() {
	dir, err := os.MkdirTemp("", "questline-sim")
	if err != nil {
		log.Fatalf("temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	missions := catalog.Default()
	store, err := history.Open(filepath.Join(dir, "history.db"), missions, "sim")
	if err != nil {
		log.Fatalf("history store: %v", err)
	}
	defer store.Close()

	wallet := session.NewMemoryWallet(100, 100)
	ctrl := session.NewController(session.Deps{
		Turns:   history.NewRecordingTurnService(&scriptedNarrator{steps: script()}, store, logger),
		History: store,
		Status:  store,
		Chips:   chips.NewMemoryStore(),
		Wallet:  wallet,
		Logger:  logger,
	})

	ctx := context.Background()
	if _, err := ctrl.LoadSession(ctx, "sim", false); err != nil {
		log.Fatalf("load session: %v", err)
	}

	inputs := []string{
		"Hello?",
		"My name is Sam.",
		"What do you need?",
		"Here is the key.",
		"Tell me everything.",
	}
	for turn, input := range inputs {
		fmt.Printf("--- Turn %d: %q ---\n", turn+1, input)
		reply, err := ctrl.SendTurn(ctx, input)
		if err != nil {
			log.Fatalf("send turn: %v", err)
		}
		fmt.Printf("Narrator: %s\n", reply.Content)

		st := ctrl.State()
		if st.Reward != nil && !st.Reward.Acknowledged {
			fmt.Printf("*** Stage %d complete, reward %d coins ***\n",
				st.Reward.StageOrderIndex, st.Reward.RewardAmount)
			ctrl.AcknowledgeStageReward()
		}
		fmt.Printf("Stage %d, progress %.0f%%, coins %d, energy %d\n\n",
			st.CurrentStage, st.ProgressPercent, wallet.Balance(), wallet.Energy())
	}

	// Reload from the durable store to show transcript reconciliation.
	fmt.Println("--- Reloaded transcript ---")
	st, err := ctrl.LoadSession(ctx, "sim", true)
	if err != nil {
		log.Fatalf("reload session: %v", err)
	}
	for _, entry := range st.Transcript {
		switch e := entry.(type) {
		case models.MissionCard:
			fmt.Printf("[Mission %d: %s]\n", e.OrderIndex, e.Title)
		case models.Turn:
			who := "Narrator"
			if e.IsUser {
				who = "You"
			}
			fmt.Printf("%s: %s\n", who, e.Text)
		}
	}
}
