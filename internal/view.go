package internal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"meeting_cost_tui/internal/format"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true).
			Align(lipgloss.Center)

	timerDisplayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("69")).
				Bold(true)

	timerRunningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	costStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	inputInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

func (m *Model) homeView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(80).Render("Meeting Cost Meter"))
	sb.WriteString("\n\n")

	boxes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.timerView(),
		"  ",
		m.participantsView(),
		"  ",
		m.calculationsView(),
	)
	sb.WriteString(boxes)
	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render("Start/Pause: Enter | Stop: x | Edit start time: t | Switch group: Tab | Config: c | Quit: q"))

	if m.HasStatsCount {
		sb.WriteString("\n")
		sb.WriteString(inactiveStyle.Render(fmt.Sprintf("%d meetings metered", m.StatsCount)))
	}

	return sb.String()
}

func (m *Model) timerView() string {
	sess := m.eng.Session()

	var timerStr string
	if sess.Running {
		timerStr = timerRunningStyle.Render(format.Duration(sess.Duration))
	} else {
		timerStr = timerDisplayStyle.Render(format.Duration(sess.Duration))
	}

	status := "Idle"
	statusStyle := inactiveStyle
	switch {
	case sess.Running:
		status = "Running"
		statusStyle = runningStyle
	case sess.StartTime != nil:
		status = "Paused"
		statusStyle = pausedStyle
	}

	started := "--:--"
	if sess.StartTime != nil {
		started = format.StartTime(*sess.StartTime)
	}

	var sb strings.Builder
	sb.WriteString("Timer\n\n")
	sb.WriteString(timerStr)
	sb.WriteString("\n\n")
	sb.WriteString(statusStyle.Render(status))
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render("Started: ") + started)

	return boxStyle.Width(24).Height(10).Render(sb.String())
}

func (m *Model) participantsView() string {
	sess := m.eng.Session()

	line1 := fmt.Sprintf("Group 1: %d", sess.Group1Participants)
	line2 := fmt.Sprintf("Group 2: %d", sess.Group2Participants)
	if m.Focus == focusGroup1 {
		line1 = inputStyle.Render("→ " + line1 + "█")
		line2 = inputInactiveStyle.Render("  " + line2)
	} else {
		line1 = inputInactiveStyle.Render("  " + line1)
		line2 = inputStyle.Render("→ " + line2 + "█")
	}

	var sb strings.Builder
	sb.WriteString("Participants\n\n")
	sb.WriteString(line1)
	sb.WriteString("\n")
	sb.WriteString(line2)
	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render("Type digits to edit"))

	return boxStyle.Width(24).Height(10).Render(sb.String())
}

func (m *Model) calculationsView() string {
	calc := m.eng.Calculations()

	var sb strings.Builder
	sb.WriteString("Costs\n\n")
	sb.WriteString(labelStyle.Render("Total:        ") + costStyle.Render(format.Currency(calc.TotalCost)))
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render("Group 1:      ") + format.Currency(calc.Group1Cost))
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render("Group 2:      ") + format.Currency(calc.Group2Cost))
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render("Participants: ") + fmt.Sprintf("%d", calc.TotalParticipants))
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render("People-hours: ") + fmt.Sprintf("%.1f", calc.PeopleHours))
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render("People-days:  ") + fmt.Sprintf("%.2f", calc.PeopleDays))

	return boxStyle.Width(30).Height(10).Render(sb.String())
}

func (m *Model) startTimeFormView() string {
	label := inputStyle.Render("→ Start time (HH:MM or HHMM): ")
	value := inputStyle.Render(m.StartTimeInput + "█")

	form := fmt.Sprintf(
		"%s\n\n%s%s\n\n%s",
		"Set the meeting start time (must be in the past)",
		label, value,
		helpStyle.Render("Enter: Apply | Esc: Cancel"),
	)

	return lipgloss.Place(
		80, 24,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Width(56).Render(form),
	)
}

func (m *Model) configFormView() string {
	labels := [3]string{
		"Group 1 hourly rate (€): ",
		"Group 2 hourly rate (€): ",
		"Working hours per day:   ",
	}

	var lines [3]string
	for i := range labels {
		marker := "  "
		style := inputInactiveStyle
		value := m.ConfigInputs[i]
		if i == m.ConfigFocus {
			marker = "→ "
			style = inputStyle
			value += "█"
		}
		lines[i] = style.Render(marker+labels[i]) + style.Render(value)
	}

	form := fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s",
		lines[0], lines[1], lines[2],
		helpStyle.Render("Tab: Switch | Enter: Save | Esc: Cancel"),
	)

	var sb strings.Builder
	sb.WriteString(titleStyle.Width(80).Render("Configuration"))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.Place(
		80, 20,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Width(50).Render(form),
	))

	return sb.String()
}
