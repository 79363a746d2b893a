// Package tui is the terminal shell. It renders SessionState snapshots and
// forwards user input to the controller; it implements no session logic.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"questline/internal/models"
	"questline/internal/session"
)

type uiState int

const (
	stateLoading uiState = iota
	stateChatting
	stateError
)

type model struct {
	state      uiState
	controller *session.Controller
	wallet     *session.MemoryWallet
	sessionKey string
	textInput  textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	err        error
	width      int
	height     int
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#777777")).
			Italic(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FFA500")).
			Padding(0, 1)

	cardTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAFF")).
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)

	sideStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	rewardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FFD700")).
			Bold(true).
			Padding(0, 2)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)
)

func newModel(ctrl *session.Controller, wallet *session.MemoryWallet, sessionKey string) model {
	ti := textinput.New()
	ti.Placeholder = "Say something..."
	ti.Focus()
	ti.CharLimit = 300
	ti.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		state:      stateLoading,
		controller: ctrl,
		wallet:     wallet,
		sessionKey: sessionKey,
		textInput:  ti,
		spinner:    sp,
	}
}

type sessionLoadedMsg struct {
	state models.SessionState
}

// stateChangedMsg is bridged from the controller's listener; it carries every
// published state, including the optimistic one appended before a send's
// network call.
type stateChangedMsg struct {
	state models.SessionState
}

type turnSettledMsg struct {
	state models.SessionState
	err   error
}

type errMsg struct {
	err error
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.loadSession())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}

		if st := m.controller.State(); st.Reward != nil && !st.Reward.Acknowledged {
			m.controller.AcknowledgeStageReward()
			m.refresh(m.controller.State())
			return m, nil
		}

		switch msg.Type {
		case tea.KeyEnter:
			if m.state != stateChatting {
				return m, nil
			}
			text := m.textInput.Value()
			if strings.TrimSpace(text) == "" {
				return m, nil
			}
			if text == "/quit" {
				return m, tea.Quit
			}
			if text == "/restart" {
				m.controller.ClearSession()
				m.textInput.Reset()
				m.state = stateLoading
				return m, m.loadSession()
			}
			m.textInput.Reset()
			return m, m.sendTurn(text)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = int(float64(msg.Width) * 0.72)
		m.viewport.Height = msg.Height - 6
		m.refresh(m.controller.State())

	case sessionLoadedMsg:
		m.state = stateChatting
		if m.viewport.Width == 0 {
			m.viewport = viewport.New(int(float64(m.width)*0.72), m.height-6)
		}
		m.refresh(msg.state)
		m.viewport.GotoBottom()
		return m, nil

	case stateChangedMsg:
		m.refresh(msg.state)
		m.viewport.GotoBottom()
		return m, nil

	case turnSettledMsg:
		m.refresh(msg.state)
		m.viewport.GotoBottom()
		if msg.err != nil && !msg.state.InsufficientEnergy {
			var sendErr *session.TurnSendError
			if !errors.As(msg.err, &sendErr) {
				m.err = msg.err
				m.state = stateError
			}
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		m.state = stateError
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.state == stateChatting {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) refresh(st models.SessionState) {
	if m.viewport.Width == 0 {
		return
	}
	m.viewport.SetContent(m.renderTranscript(st))
	m.viewport.GotoBottom()
}

func (m model) View() string {
	switch m.state {
	case stateLoading:
		return fmt.Sprintf("\n  %s Loading your story...\n", m.spinner.View())

	case stateError:
		return fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.\n", m.err)
	}

	st := m.controller.State()

	mainView := lipgloss.JoinHorizontal(lipgloss.Top,
		m.viewport.View(),
		m.renderSide(st),
	)

	var bottom []string
	if st.Reward != nil && !st.Reward.Acknowledged {
		bottom = append(bottom, rewardStyle.Render(fmt.Sprintf(
			" Mission %d complete! +%d coins — press any key ",
			st.Reward.StageOrderIndex, st.Reward.RewardAmount)))
	}
	if st.InsufficientEnergy {
		bottom = append(bottom, warnStyle.Render("Out of energy. Top up to keep playing."))
	}
	if chips := m.renderChips(st); chips != "" {
		bottom = append(bottom, chips)
	}
	if st.IsTyping {
		bottom = append(bottom, helpStyle.Render(m.spinner.View()+" narrator is typing..."))
	}
	bottom = append(bottom,
		"\n"+m.textInput.View(),
		helpStyle.Render("Commands: /restart, /quit, or just talk."),
	)

	return "\n" + lipgloss.JoinVertical(lipgloss.Left,
		append([]string{mainView}, bottom...)...,
	) + "\n"
}

func (m model) renderTranscript(st models.SessionState) string {
	width := m.viewport.Width
	var b strings.Builder
	for _, entry := range st.Transcript {
		switch e := entry.(type) {
		case models.MissionCard:
			title := cardTitleStyle.Render(fmt.Sprintf("Mission %d: %s", e.OrderIndex, e.Title))
			body := narratorStyle.Render(e.Description)
			b.WriteString(cardStyle.Width(width - 2).Render(title+"\n"+body) + "\n\n")
		case models.Turn:
			switch {
			case e.IsUser && e.Pending:
				b.WriteString(pendingStyle.Width(width).Render("> "+e.Text) + "\n\n")
			case e.IsUser:
				b.WriteString(userStyle.Width(width).Render("> "+e.Text) + "\n\n")
			default:
				b.WriteString(narratorStyle.Width(width).Render(e.Text) + "\n\n")
			}
		}
	}
	return b.String()
}

func (m model) renderChips(st models.SessionState) string {
	if len(st.Suggestions) == 0 || st.IsTyping {
		return ""
	}
	parts := make([]string, 0, len(st.Suggestions))
	for _, s := range st.Suggestions {
		parts = append(parts, chipStyle.Render(s))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m model) renderSide(st models.SessionState) string {
	content := titleStyle.Render("PROGRESS") + "\n" +
		fmt.Sprintf("Stage: %d\n%.0f%%\n\n", st.CurrentStage, st.ProgressPercent)
	if st.MissionText != "" {
		content += titleStyle.Render("MISSION") + "\n" + st.MissionText + "\n\n"
	}
	content += titleStyle.Render("WALLET") + "\n" +
		fmt.Sprintf("Coins: %d\nEnergy: %d\n", m.wallet.Balance(), m.wallet.Energy())

	sideWidth := int(float64(m.width) * 0.24)
	return sideStyle.Width(sideWidth).Height(m.viewport.Height).Render(content)
}

func (m model) loadSession() tea.Cmd {
	return func() tea.Msg {
		st, err := m.controller.LoadSession(context.Background(), m.sessionKey, false)
		if err != nil {
			return errMsg{err}
		}
		return sessionLoadedMsg{state: st}
	}
}

func (m model) sendTurn(text string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.controller.SendTurn(context.Background(), text)
		return turnSettledMsg{state: m.controller.State(), err: err}
	}
}

// Run starts the shell for the given controller and session key.
func Run(ctrl *session.Controller, wallet *session.MemoryWallet, sessionKey string) error {
	p := tea.NewProgram(newModel(ctrl, wallet, sessionKey), tea.WithAltScreen())
	ctrl.SetListener(func(st models.SessionState) {
		p.Send(stateChangedMsg{state: st})
	})
	_, err := p.Run()
	return err
}
