package internal

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"meeting_cost_tui/internal/format"
	"meeting_cost_tui/internal/input"
	"meeting_cost_tui/internal/meeting"
)

// MsgTick triggers a re-render; the engine keeps its own time.
type MsgTick struct{}

// MsgStatsCount carries the remote usage counter value once it arrives.
type MsgStatsCount struct {
	Count int
}

type screen int

const (
	screenHome screen = iota
	screenConfig
)

const (
	focusGroup1 = 0
	focusGroup2 = 1
)

type Model struct {
	eng *meeting.Engine

	Screen screen
	Focus  int

	// Start-time editor state
	EditingStartTime bool
	StartTimeInput   string

	// Config form state: group 1 rate, group 2 rate, working hours per day
	ConfigInputs [3]string
	ConfigFocus  int

	StatsCount    int
	HasStatsCount bool
}

func NewModel(eng *meeting.Engine) *Model {
	return &Model{eng: eng}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgTick:
		return m, nil
	case MsgStatsCount:
		m.StatsCount = msg.Count
		m.HasStatsCount = true
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	if m.EditingStartTime {
		return m.startTimeFormView()
	}
	if m.Screen == screenConfig {
		return m.configFormView()
	}
	return m.homeView()
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.EditingStartTime {
		return m.handleStartTimeInput(msg)
	}
	if m.Screen == screenConfig {
		return m.handleConfigInput(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "enter", "s", " ":
		if m.eng.Session().Running {
			m.eng.Pause()
		} else {
			m.eng.Start()
		}
	case "x":
		m.eng.Stop()
	case "t":
		sess := m.eng.Session()
		m.StartTimeInput = ""
		if sess.StartTime != nil {
			m.StartTimeInput = format.StartTime(*sess.StartTime)
		}
		m.EditingStartTime = true
	case "c":
		cfg := m.eng.Config()
		m.ConfigInputs[0] = formatRate(cfg.Group1HourlyRate)
		m.ConfigInputs[1] = formatRate(cfg.Group2HourlyRate)
		m.ConfigInputs[2] = formatRate(cfg.WorkingHoursPerDay)
		m.ConfigFocus = 0
		m.Screen = screenConfig
	case "tab":
		m.Focus = 1 - m.Focus
	case "backspace":
		m.setFocusedParticipants(dropLastDigit(m.focusedParticipants()))
	default:
		runes := []rune(msg.String())
		if len(runes) == 1 && runes[0] >= '0' && runes[0] <= '9' {
			text := strconv.Itoa(m.focusedParticipants()) + string(runes[0])
			n := input.ValidateInteger(text, 0, m.eng.MaxParticipants(), m.focusedParticipants())
			m.setFocusedParticipants(n)
		}
	}
	return m, nil
}

func (m *Model) handleStartTimeInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.EditingStartTime = false
		m.StartTimeInput = ""
	case "enter":
		// The engine silently rejects malformed or future times.
		m.eng.SetManualStartTime(m.StartTimeInput)
		m.EditingStartTime = false
		m.StartTimeInput = ""
	case "backspace":
		if len(m.StartTimeInput) > 0 {
			m.StartTimeInput = m.StartTimeInput[:len(m.StartTimeInput)-1]
		}
	default:
		runes := []rune(msg.String())
		if len(runes) == 1 && (runes[0] == ':' || (runes[0] >= '0' && runes[0] <= '9')) {
			m.StartTimeInput += string(runes[0])
		}
	}
	return m, nil
}

func (m *Model) handleConfigInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.Screen = screenHome
	case "tab", "down":
		m.ConfigFocus = (m.ConfigFocus + 1) % len(m.ConfigInputs)
	case "shift+tab", "up":
		m.ConfigFocus = (m.ConfigFocus + len(m.ConfigInputs) - 1) % len(m.ConfigInputs)
	case "enter":
		m.commitConfig()
		m.Screen = screenHome
	case "backspace":
		field := &m.ConfigInputs[m.ConfigFocus]
		if len(*field) > 0 {
			*field = (*field)[:len(*field)-1]
		}
	default:
		runes := []rune(msg.String())
		if len(runes) == 1 && (runes[0] == '.' || (runes[0] >= '0' && runes[0] <= '9')) {
			m.ConfigInputs[m.ConfigFocus] += string(runes[0])
		}
	}
	return m, nil
}

// commitConfig parses the form, clamps each field into the engine's limits
// and applies the whole record at once. Unparseable fields keep their
// previous value.
func (m *Model) commitConfig() {
	cur := m.eng.Config()
	limits := m.eng.Limits()

	g1 := clamp(input.ParseNumber(m.ConfigInputs[0], cur.Group1HourlyRate), limits.MinHourlyRate, limits.MaxHourlyRate)
	g2 := clamp(input.ParseNumber(m.ConfigInputs[1], cur.Group2HourlyRate), limits.MinHourlyRate, limits.MaxHourlyRate)
	wh := clamp(input.ParseNumber(m.ConfigInputs[2], cur.WorkingHoursPerDay), limits.MinWorkingHours, limits.MaxWorkingHours)

	m.eng.UpdateConfig(meeting.ConfigPatch{
		Group1HourlyRate:   &g1,
		Group2HourlyRate:   &g2,
		WorkingHoursPerDay: &wh,
	})
}

func (m *Model) focusedParticipants() int {
	sess := m.eng.Session()
	if m.Focus == focusGroup2 {
		return sess.Group2Participants
	}
	return sess.Group1Participants
}

func (m *Model) setFocusedParticipants(n int) {
	if m.Focus == focusGroup2 {
		m.eng.SetGroup2Participants(n)
		return
	}
	m.eng.SetGroup1Participants(n)
}

func dropLastDigit(n int) int {
	return n / 10
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
