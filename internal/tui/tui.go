package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/rickshaw/internal/engine"
	"github.com/tatianab/rickshaw/internal/models"
	"github.com/tatianab/rickshaw/internal/pricing"
	"github.com/tatianab/rickshaw/internal/report"
)

type sessionState int

const (
	statePlaying sessionState = iota
	stateDone
	stateError
)

const (
	defaultWidth  = 100
	defaultHeight = 24
)

type model struct {
	state     sessionState
	game      *engine.Game
	textInput textinput.Model
	viewport  viewport.Model
	err       error
	gameLog   string
	width     int
	height    int
	result    *engine.Result
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	driverStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD75F"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)
)

func NewModel(game *engine.Game) model {
	ti := textinput.New()
	ti.Placeholder = "Where do you want to go?"
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 40

	m := model{
		state:     statePlaying,
		game:      game,
		textInput: ti,
		width:     defaultWidth,
		height:    defaultHeight,
	}
	m.viewport = viewport.New(m.logWidth(), m.height-6)
	m.gameLog = bannerStyle.Render(report.Banner(game.Session().Location.Name)) + "\n" +
		m.driverLine(game.Opening())
	m.viewport.SetContent(m.gameLog)
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}

		if m.state == stateDone {
			if msg.Type == tea.KeyEnter {
				return m, tea.Quit
			}
			return m, nil
		}

		if msg.Type == tea.KeyEnter && m.state == statePlaying {
			input := strings.TrimSpace(m.textInput.Value())
			m.textInput.Reset()

			if input == "/quit" {
				input = "exit"
			}

			styled := userStyle.Width(m.logWidth()).Render("You: " + input)
			m.gameLog += "\n\n" + styled
			turn, err := m.game.ProcessTurn(context.Background(), input)
			return m.applyTurn(turn, err)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.logWidth()
		m.viewport.Height = max(1, msg.Height-6)
		m.viewport.SetContent(m.gameLog)
	}

	if m.state == statePlaying {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

// applyTurn records the driver's reply to one player turn.
func (m model) applyTurn(turn *engine.Turn, err error) (tea.Model, tea.Cmd) {
	if err != nil && !errors.Is(err, engine.ErrUnknownDestination) {
		m.err = err
		m.state = stateError
		return m, nil
	}
	if turn.Exited {
		return m, tea.Quit
	}

	m.gameLog += "\n\n" + m.driverLine(turn.Reply)
	if m.game.State() == engine.StateDone {
		res, err := m.game.Result()
		if err != nil {
			m.err = err
			m.state = stateError
			return m, nil
		}
		m.result = res
		m.state = stateDone
		m.gameLog += "\n\n" + driverStyle.Render(report.Summary(res))
		m.textInput.Blur()
		m.textInput.Placeholder = "Press Enter to leave"
	} else if m.game.Session().HasDestination() {
		m.textInput.Placeholder = "Make an offer, push back or agree..."
	}
	m.viewport.SetContent(m.gameLog)
	m.viewport.GotoBottom()
	return m, nil
}

func (m model) View() string {
	var s string

	switch m.state {
	case statePlaying, stateDone:
		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewport.View(),
			m.renderState(),
		)

		help := helpStyle.Render("Name a place, offer a price, push back or agree. 'exit' or Esc leaves.")
		if m.state == stateDone {
			help = helpStyle.Render("Ride agreed. Enter or Esc to leave.")
		}

		s = lipgloss.JoinVertical(lipgloss.Left,
			mainView,
			"\n"+m.textInput.View(),
			"\n"+help,
		)

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)
	}

	return "\n" + s + "\n"
}

func (m model) renderState() string {
	sess := m.game.Session()
	c := sess.Conditions

	location := titleStyle.Render("RIDE") + "\n" + "From: " + models.Title(sess.Location.Name) + "\n"
	if sess.HasDestination() {
		location += "To: " + models.Title(sess.Destination.Name) + "\n"
		location += fmt.Sprintf("Distance: %.1f km\n", sess.Distance)
	} else {
		location += "To: ?\n"
	}
	location += "\n"

	fare := titleStyle.Render("FARE") + "\n"
	if sess.HasDestination() {
		fare += fmt.Sprintf("Quoted: ₹%d\nAsking: ₹%d\nRounds: %d\n", sess.BasePrice, sess.CurrentPrice, sess.Rounds)
	} else {
		fare += "(no quote yet)\n"
	}
	fare += "\n"

	mood := "?"
	if m.state == stateDone {
		mood = models.Title(string(c.Mood))
	}
	conditions := titleStyle.Render("CONDITIONS") + "\n" +
		fmt.Sprintf("Time: %s\nTraffic: %s\nWeather: %s\nDriver: %s\n",
			pricing.TimeOfDay(c.Hour),
			models.Title(string(c.Traffic)),
			models.Title(string(c.Weather)),
			mood,
		)

	content := location + fare + conditions

	stateWidth := int(float64(m.width) * 0.23)
	return stateStyle.Width(stateWidth).Height(m.viewport.Height).Render(content)
}

func (m model) driverLine(text string) string {
	return driverStyle.Width(m.logWidth()).Render("AI: " + text)
}

func (m model) logWidth() int {
	return int(float64(m.width) * 0.75)
}

// Run plays game full-screen. It returns the scored result when a fare was agreed,
// and a nil result when the player left.
func Run(game *engine.Game) (*engine.Result, error) {
	p := tea.NewProgram(NewModel(game), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}
