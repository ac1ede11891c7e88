package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"punchlog/internal/api"
	"punchlog/internal/fragment"
	"punchlog/internal/session"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Interactive work-log interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		s := session.New(client, newIdentityStore())
		p := tea.NewProgram(newUIModel(s, client), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

// Styles for the interactive view.
var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	scopeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	clockInStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	clockOutStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	summaryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Italic(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// Messages for tea updates.
type (
	submitResultMsg struct {
		call *session.Call
		resp api.InputResponse
		err  error
	}
	deleteResultMsg struct {
		call *session.Call
		resp api.DeleteResponse
		err  error
	}
	tickMsg time.Time
)

type uiModel struct {
	textinput textinput.Model
	spinner   spinner.Model
	sess      *session.Session
	client    session.Service

	bootstrap *session.Call
	selected  int
	width     int
	height    int
}

func newUIModel(s *session.Session, client session.Service) uiModel {
	ti := textinput.New()
	ti.Placeholder = "Log what you did... (Enter to send, Ctrl+C to exit)"
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 1024
	ti.Width = 80

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := uiModel{
		textinput: ti,
		spinner:   sp,
		sess:      s,
		client:    client,
		bootstrap: s.Bootstrap(),
	}
	if s.IdentityRequired() {
		m.textinput.Placeholder = "Who are you? Type your author name..."
	}
	return m
}

// runCall performs the call's transport off the Update loop and delivers
// the result as a message; the resolve happens back in Update, so the
// session is only ever mutated from one place.
func (m uiModel) runCall(call *session.Call) tea.Cmd {
	if call == nil {
		return nil
	}
	if call.DeleteID != "" {
		return func() tea.Msg {
			resp, err := m.client.DeleteFragment(ctx, call.DeleteID, call.ScopeAuthor, call.ScopeDate)
			return deleteResultMsg{call: call, resp: resp, err: err}
		}
	}
	return func() tea.Msg {
		resp, err := m.client.SubmitInput(ctx, call.Req)
		return submitResultMsg{call: call, resp: resp, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m uiModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick, tick()}
	if m.bootstrap != nil {
		cmds = append(cmds, m.runCall(m.bootstrap))
	}
	return tea.Batch(cmds...)
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var tiCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit

		case tea.KeyEsc:
			if _, ok := m.sess.DeleteTarget(); ok {
				m.sess.CancelDelete()
				return m, nil
			}
			return m, tea.Quit

		case tea.KeyEnter:
			if _, ok := m.sess.DeleteTarget(); ok {
				call, err := m.sess.BeginDelete()
				if err != nil {
					return m, nil
				}
				return m, tea.Batch(m.spinner.Tick, m.runCall(call))
			}
			if m.sess.IdentityRequired() {
				return m.handleSetAuthor()
			}
			return m.handleSubmit()

		case tea.KeyCtrlK:
			return m.quickAction(m.sess.BeginClockIn)

		case tea.KeyCtrlS:
			return m.quickAction(m.sess.BeginSummarize)

		case tea.KeyCtrlA:
			return m, m.runCall(m.sess.ToggleAllView())

		case tea.KeyPgUp:
			return m, m.runCall(m.sess.ShiftDate(-1))

		case tea.KeyPgDown:
			return m, m.runCall(m.sess.ShiftDate(1))

		case tea.KeyUp:
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case tea.KeyDown:
			if m.selected < len(m.sess.Fragments())-1 {
				m.selected++
			}
			return m, nil

		case tea.KeyCtrlD:
			frags := m.sess.Fragments()
			if m.selected < len(frags) && frags[m.selected].ID != "" {
				m.sess.RequestDelete(frags[m.selected])
			}
			return m, nil
		}

		if !m.sess.Pending() {
			m.textinput, tiCmd = m.textinput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textinput.Width = msg.Width - 4

	case spinner.TickMsg:
		if m.sess.Pending() {
			var spCmd tea.Cmd
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}

	case tickMsg:
		m.sess.ExpireNotices(time.Time(msg))
		return m, tick()

	case submitResultMsg:
		if ok := m.sess.ResolveSubmit(msg.call, msg.resp, msg.err); ok {
			m.textinput.Reset()
		}
		m.clampSelection()

	case deleteResultMsg:
		m.sess.ResolveDelete(msg.call, msg.resp, msg.err)
		m.clampSelection()
	}

	return m, tiCmd
}

func (m uiModel) handleSetAuthor() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.textinput.Value())
	if name == "" {
		// Blank input leaves the prompt up, silently.
		return m, nil
	}
	if err := m.sess.SetAuthor(name); err != nil {
		return m, nil
	}
	m.textinput.Reset()
	m.textinput.Placeholder = "Log what you did... (Enter to send, Ctrl+C to exit)"
	// First query for the fresh identity.
	return m, m.runCall(m.sess.SetDate(m.sess.Date()))
}

func (m uiModel) handleSubmit() (tea.Model, tea.Cmd) {
	call, err := m.sess.BeginSubmit(m.textinput.Value(), false)
	if err != nil {
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, m.runCall(call))
}

func (m uiModel) quickAction(begin func() (*session.Call, error)) (tea.Model, tea.Cmd) {
	call, err := begin()
	if err != nil {
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, m.runCall(call))
}

func (m *uiModel) clampSelection() {
	if n := len(m.sess.Fragments()); m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m uiModel) View() string {
	var b strings.Builder

	scope := m.sess.Author()
	if m.sess.AllView() {
		scope = "all authors"
	}
	clock := clockOutStyle.Render("not clocked in")
	if m.sess.ClockedIn() {
		clock = clockInStyle.Render("clocked in")
	}
	b.WriteString(fmt.Sprintf("%s  %s  %s\n\n",
		headerStyle.Render("punchlog "+m.sess.Date()),
		scopeStyle.Render(scope),
		clock,
	))

	if m.sess.IdentityRequired() {
		b.WriteString("No author configured. Enter your name below.\n\n")
	}

	frags := m.sess.Fragments()
	if len(frags) == 0 {
		b.WriteString(dimStyle.Render("  no fragments for this day") + "\n")
	}
	for i, f := range frags {
		cursor := "  "
		if i == m.selected {
			cursor = cursorStyle.Render("> ")
		}
		marker := "•"
		if f.Type == fragment.TypeSummary {
			marker = "Σ"
		}
		line := f.Content
		if m.sess.AllView() && f.Author != "" {
			line = f.Author + ": " + line
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, marker, line))
	}
	b.WriteString("\n")

	if sum, ok := m.sess.Summary(); ok {
		b.WriteString(summaryStyle.Render("Summary: "+firstLine(sum)) + "\n")
	}

	if target, ok := m.sess.DeleteTarget(); ok {
		b.WriteString(errStyle.Render(fmt.Sprintf("Delete %q? Enter to confirm, Esc to cancel", firstLine(target.Content))) + "\n")
	}
	if errText := m.sess.Err(); errText != "" {
		b.WriteString(errStyle.Render("✗ "+errText) + "\n")
	}
	if notice, ok := m.sess.Notice(); ok {
		b.WriteString(noticeStyle.Render("⚠ "+notice) + "\n")
	}

	if m.sess.Pending() {
		b.WriteString(m.spinner.View() + " working...\n")
	}

	b.WriteString("\n" + m.textinput.View() + "\n")
	b.WriteString(helpStyle.Render("enter send · ^k clock in · ^s summarize · ^a all/me · pgup/pgdn day · ↑/↓ select · ^d delete"))

	return b.String()
}
