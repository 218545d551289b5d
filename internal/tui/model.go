// Package tui is the interactive approval queue for the logged-in
// role. It renders the role's pending view as a table and submits
// decisions without leaving the terminal.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/activus-tech/tdsctl/internal/core/approval"
	"github.com/activus-tech/tdsctl/internal/core/session"
	"github.com/activus-tech/tdsctl/internal/core/styles"
	"github.com/activus-tech/tdsctl/internal/tdsctl"
)

const requestTimeout = 30 * time.Second

type listLoadedMsg struct {
	gen   int
	items []approval.TDS
	err   error
}

type decisionDoneMsg struct {
	id       int64
	approved bool
	err      error
}

type docOpenedMsg struct {
	name string
	err  error
}

type toastTickMsg time.Time

type pendingDecision struct {
	id       int64
	approved bool
}

// Model is the root bubbletea model.
type Model struct {
	app  *tdsctl.App
	sess session.Session

	view    approval.View
	hasView bool

	table  table.Model
	spin   spinner.Model
	toasts *ToastController

	items    []approval.TDS
	loading  bool
	fetchGen int

	confirm *ConfirmModal
	pending pendingDecision

	width  int
	height int
}

// NewModel builds the queue model for the logged-in session.
func NewModel(app *tdsctl.App, sess session.Session) Model {
	view, hasView := approval.ViewFor(sess.Role)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.CurrentPalette.Primary)

	m := Model{
		app:     app,
		sess:    sess,
		view:    view,
		hasView: hasView,
		spin:    sp,
		toasts:  NewToastController(),
	}

	if hasView {
		m.table = newQueueTable(view)
	}
	return m
}

func newQueueTable(view approval.View) table.Model {
	cols := make([]table.Column, 0, len(view.Columns)+1)
	cols = append(cols, table.Column{Title: "ID", Width: 6})
	for _, c := range view.Columns {
		cols = append(cols, table.Column{Title: c.Title, Width: c.Width})
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
	)

	st := table.DefaultStyles()
	st.Header = styles.TableHeaderStyle
	st.Selected = styles.SelectedRowStyle
	t.SetStyles(st)

	return t
}

func (m Model) Init() tea.Cmd {
	if !m.hasView {
		return nil
	}
	return tea.Batch(m.spin.Tick, m.fetchCmd(m.fetchGen))
}

// fetchCmd loads the queue. The generation guards against a stale
// response landing after a newer refresh started.
func (m Model) fetchCmd(gen int) tea.Cmd {
	app, view, username := m.app, m.view, m.sess.Username
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		items, err := app.API.PendingApprovals(ctx, view, username)
		return listLoadedMsg{gen: gen, items: items, err: err}
	}
}

func (m Model) decideCmd(id int64, approved bool) tea.Cmd {
	app, view, username := m.app, m.view, m.sess.Username
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := app.API.Approve(ctx, view, id, approved, username)
		return decisionDoneMsg{id: id, approved: approved, err: err}
	}
}

func (m Model) openDocCmd(docRef string) tea.Cmd {
	app := m.app
	name := approval.DisplayName(docRef)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		dst, err := app.DownloadPath(name)
		if err != nil {
			return docOpenedMsg{name: name, err: err}
		}

		f, err := os.Create(dst)
		if err != nil {
			return docOpenedMsg{name: name, err: err}
		}
		if err := app.API.Download(ctx, name, f); err != nil {
			_ = f.Close()
			_ = os.Remove(dst)
			return docOpenedMsg{name: name, err: err}
		}
		if err := f.Close(); err != nil {
			return docOpenedMsg{name: name, err: err}
		}

		return docOpenedMsg{name: name, err: app.OpenFile(dst)}
	}
}

func toastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.hasView {
			m.table.SetHeight(max(4, msg.Height-6))
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case listLoadedMsg:
		return m.onListLoaded(msg)

	case decisionDoneMsg:
		return m.onDecisionDone(msg)

	case docOpenedMsg:
		if msg.err != nil {
			return m.pushToast(fmt.Sprintf("%s: %v", msg.name, msg.err), true)
		}
		return m.pushToast("Opened "+msg.name, false)

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if m.toasts.HasToasts() {
			return m, toastTick()
		}
		m.toasts.SetTicking(false)
		return m, nil

	case tea.KeyMsg:
		return m.onKey(msg)
	}

	return m, nil
}

func (m Model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A visible modal owns the keyboard.
	if m.confirm != nil {
		updated, cmd := m.confirm.Update(msg)
		m.confirm = &updated

		switch {
		case updated.Confirmed():
			m.confirm = nil
			return m, m.decideCmd(m.pending.id, m.pending.approved)
		case updated.Cancelled():
			m.confirm = nil
			return m, nil
		}
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "r":
		return m.startFetch()

	case "a":
		return m.askDecision(true)

	case "x":
		return m.askDecision(false)

	case "o":
		if item, ok := m.selected(); ok {
			docs := item.Documents()
			if len(docs) == 0 {
				return m.pushToast("No documents on this TDS", true)
			}
			return m, m.openDocCmd(docs[0])
		}
		return m, nil

	case "esc":
		if m.toasts.HasToasts() {
			m.toasts.Dismiss()
			return m, nil
		}
		return m, nil
	}

	if !m.hasView {
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) startFetch() (tea.Model, tea.Cmd) {
	if !m.hasView {
		return m, nil
	}
	m.fetchGen++
	m.loading = true
	return m, tea.Batch(m.spin.Tick, m.fetchCmd(m.fetchGen))
}

func (m Model) askDecision(approved bool) (tea.Model, tea.Cmd) {
	if !m.view.CanApprove() {
		return m.pushToast(fmt.Sprintf("Role %s is read-only here", m.sess.Role), true)
	}

	item, ok := m.selected()
	if !ok {
		return m, nil
	}

	verb := "Approve"
	if !approved {
		verb = "Reject"
	}
	modal := NewConfirmModal(fmt.Sprintf("%s %q (TDS %d)?", verb, item.Name, item.ID))
	m.confirm = &modal
	m.pending = pendingDecision{id: item.ID, approved: approved}
	return m, nil
}

func (m Model) onListLoaded(msg listLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.fetchGen {
		// A newer refresh superseded this response.
		return m, nil
	}

	m.loading = false
	if msg.err != nil {
		return m.pushToast(msg.err.Error(), true)
	}

	m.items = msg.items
	m.syncRows()
	return m, nil
}

func (m Model) onDecisionDone(msg decisionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.pushToast(msg.err.Error(), true)
	}

	// The server has accepted the decision; drop the row locally
	// instead of re-fetching the whole queue.
	kept := m.items[:0]
	for _, item := range m.items {
		if item.ID != msg.id {
			kept = append(kept, item)
		}
	}
	m.items = kept
	m.syncRows()

	verb := "Approved"
	if !msg.approved {
		verb = "Rejected"
	}
	return m.pushToast(fmt.Sprintf("%s TDS %d", verb, msg.id), false)
}

func (m *Model) syncRows() {
	rows := make([]table.Row, 0, len(m.items))
	for _, item := range m.items {
		row := append(table.Row{fmt.Sprintf("%d", item.ID)}, m.view.Row(item)...)
		rows = append(rows, row)
	}
	m.table.SetRows(rows)

	if cursor := m.table.Cursor(); cursor >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m Model) selected() (approval.TDS, bool) {
	if len(m.items) == 0 {
		return approval.TDS{}, false
	}
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.items) {
		return approval.TDS{}, false
	}
	return m.items[cursor], true
}

func (m Model) pushToast(text string, isError bool) (tea.Model, tea.Cmd) {
	m.toasts.Push(text, isError)
	if m.toasts.Ticking() {
		return m, nil
	}
	m.toasts.SetTicking(true)
	return m, toastTick()
}

func (m Model) View() string {
	if !m.hasView {
		return styles.TitleStyle.Render("tdsctl") + "\n\n" +
			fmt.Sprintf("No approval queue for role %s.\n", m.sess.Role) +
			styles.TextMutedStyle.Render("Press q to quit.")
	}

	header := styles.TitleStyle.Render(m.view.Title) + "  " +
		styles.TextMutedStyle.Render(fmt.Sprintf("%s (%s)", m.sess.Username, m.sess.Role))

	var body string
	switch {
	case m.loading:
		body = m.spin.View() + " Loading..."
	case len(m.items) == 0:
		body = styles.TextMutedStyle.Render("No data available")
	default:
		body = m.table.View()
	}

	help := styles.TextMutedStyle.Render(m.helpLine())

	out := header + "\n\n" + body + "\n" + help

	if m.confirm != nil {
		out += "\n\n" + m.confirm.View()
	}
	if m.toasts.HasToasts() {
		out += "\n" + m.toasts.View()
	}
	return out
}

func (m Model) helpLine() string {
	if m.view.CanApprove() {
		return "a approve • x reject • o open doc • r refresh • q quit"
	}
	return "o open doc • r refresh • q quit"
}

// Run starts the TUI for the logged-in session.
func Run(app *tdsctl.App, sess session.Session) error {
	p := tea.NewProgram(NewModel(app, sess), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
