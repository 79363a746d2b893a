package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"questline/internal/models"
)

type fakeTurns struct {
	reply    *models.TurnReply
	err      error
	calls    int
	lastText string
}

func (f *fakeTurns) Send(ctx context.Context, text string) (*models.TurnReply, error) {
	f.calls++
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

// blockingTurns parks inside Send until released, signalling entry first, so
// tests can observe the controller while a send is in flight.
type blockingTurns struct {
	entered chan struct{}
	release chan struct{}
	reply   *models.TurnReply
}

func newBlockingTurns(reply *models.TurnReply) *blockingTurns {
	return &blockingTurns{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		reply:   reply,
	}
}

func (b *blockingTurns) Send(ctx context.Context, text string) (*models.TurnReply, error) {
	close(b.entered)
	<-b.release
	return b.reply, nil
}

type fakeHistory struct {
	page  *models.HistoryPage
	err   error
	calls int
}

func (f *fakeHistory) GetHistory(ctx context.Context) (*models.HistoryPage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

type fakeStatus struct {
	snap  *models.StatusSnapshot
	err   error
	calls int
}

func (f *fakeStatus) GetStatus(ctx context.Context) (*models.StatusSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

var errChipStore = errors.New("chip store unavailable")

type fakeChips struct {
	recs   map[string]*models.SuggestionRecord
	fail   bool
	sets   int
	clears int
}

func newFakeChips() *fakeChips {
	return &fakeChips{recs: make(map[string]*models.SuggestionRecord)}
}

func (f *fakeChips) Get(sessionKey string) (*models.SuggestionRecord, error) {
	if f.fail {
		return nil, errChipStore
	}
	return f.recs[sessionKey], nil
}

func (f *fakeChips) Set(sessionKey string, rec *models.SuggestionRecord) error {
	f.sets++
	if f.fail {
		return errChipStore
	}
	f.recs[sessionKey] = rec
	return nil
}

func (f *fakeChips) Clear(sessionKey string) error {
	f.clears++
	if f.fail {
		return errChipStore
	}
	delete(f.recs, sessionKey)
	return nil
}

func testMissions() []models.Mission {
	return []models.Mission{
		{ID: 1, OrderIndex: 1, Title: "First Contact", Description: "Say hello."},
		{ID: 2, OrderIndex: 2, Title: "The Favor", Description: "Help out."},
		{ID: 3, OrderIndex: 3, Title: "The Reveal", Description: "Learn the truth."},
	}
}

type testEnv struct {
	ctrl    *Controller
	turns   *fakeTurns
	history *fakeHistory
	status  *fakeStatus
	chips   *fakeChips
	wallet  *MemoryWallet
}

func newTestEnv() *testEnv {
	env := &testEnv{
		turns:   &fakeTurns{reply: &models.TurnReply{Content: "hello"}},
		history: &fakeHistory{page: &models.HistoryPage{}},
		status: &fakeStatus{snap: &models.StatusSnapshot{
			CurrentStage: 1,
			Catalog:      testMissions(),
		}},
		chips:  newFakeChips(),
		wallet: NewMemoryWallet(100, 100),
	}
	env.ctrl = NewController(Deps{
		Turns:   env.turns,
		History: env.history,
		Status:  env.status,
		Chips:   env.chips,
		Wallet:  env.wallet,
	})
	return env
}

func (e *testEnv) load() error {
	_, err := e.ctrl.LoadSession(context.Background(), "sess-1", false)
	return err
}

func historyTurn(id string, missionID int64, user bool, minute int, completion bool) models.HistoryTurn {
	return models.HistoryTurn{
		ID:         id,
		IsUser:     user,
		Content:    fmt.Sprintf("msg %s", id),
		MissionID:  missionID,
		CreatedAt:  time.Date(2025, 6, 1, 12, minute, 0, 0, time.UTC),
		Completion: completion,
	}
}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }
func strp(v string) *string     { return &v }
