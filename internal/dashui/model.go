// Package dashui provides the Bubble Tea rotating dashboard.
package dashui

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/oradash/internal/model"
	"github.com/verte-zerg/oradash/internal/rotation"
	"github.com/verte-zerg/oradash/internal/session"
	"github.com/verte-zerg/oradash/internal/stats"
	"github.com/verte-zerg/oradash/internal/views"
)

const (
	plotHeight     = 12
	defaultWidth   = 80
	codeColWidth   = 11
	countColWidth  = 11
	minMessageCol  = 20
	clockBarMaxLen = 40
)

var activeNavStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#F0F0F0")).
	Bold(true).
	Padding(0, 1).
	Border(lipgloss.RoundedBorder(), true).
	BorderForeground(lipgloss.Color("#1F77B4"))

var modalStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder(), true).
	BorderForeground(lipgloss.Color("#1F77B4")).
	Padding(1, 2)

var (
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	clockStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#1F77B4")).Bold(true)
	clockFill       = lipgloss.NewStyle().Foreground(lipgloss.Color("#1F77B4"))
	clockEmpty      = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A3A3A"))
	tableMuted      = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

type tickMsg time.Time

type fileLoadedMsg struct {
	path    string
	content string
	err     error
}

// Model implements the Bubble Tea dashboard.
type Model struct {
	sess     *session.Context
	path     string
	now      func() time.Time
	readFile func(string) ([]byte, error)

	width  int
	height int

	current  session.Instruction
	lastGood session.Instruction
	loading  bool
	fileErr  string
	dirty    bool

	body  viewport.Model
	table table.Model

	openMode  bool
	openInput textinput.Model
}

// NewModel constructs a dashboard for sess. When path is non-empty the file
// is loaded on start.
func NewModel(sess *session.Context, path string) *Model {
	m := &Model{
		sess:     sess,
		path:     path,
		now:      time.Now,
		readFile: os.ReadFile,
		body:     viewport.New(0, 0),
		table:    buildTopTable(nil, defaultWidth, plotHeight),
	}
	m.initOpenInput()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tickCmd()}
	if m.path != "" {
		m.loading = true
		cmds = append(cmds, m.loadFileCmd(m.path))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderBody()
		return m, nil
	case tickMsg:
		m.apply(m.sess.Tick(m.now()))
		return m, m.tickCmd()
	case fileLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.fileErr = msg.err.Error()
			slog.Warn("failed to read log file", "path", msg.path, "err", msg.err)
			return m, nil
		}
		m.fileErr = ""
		m.path = msg.path
		m.sess.SetUpload(session.Upload{Name: msg.path, Content: msg.content})
		m.dirty = true
		m.apply(m.sess.Tick(m.now()))
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.openMode {
			return m.updateOpen(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.sess.Prev(m.now())
			m.apply(m.sess.Tick(m.now()))
			return m, tea.ClearScreen
		case "right", "l":
			m.sess.Next(m.now())
			m.apply(m.sess.Tick(m.now()))
			return m, tea.ClearScreen
		case "o":
			return m.startOpen()
		case "r":
			if m.path == "" {
				return m, nil
			}
			m.loading = true
			return m, m.loadFileCmd(m.path)
		default:
			if m.current.View.Kind == model.KindTable {
				var cmd tea.Cmd
				m.table, cmd = m.table.Update(msg)
				return m, cmd
			}
			var cmd tea.Cmd
			m.body, cmd = m.body.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.openMode {
		return fitLines(m.renderOpenModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBodyView(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.sess.Config().TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) loadFileCmd(path string) tea.Cmd {
	read := m.readFile
	return func() tea.Msg {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fileLoadedMsg{path: path, err: err}
		}
		data, err := read(abs)
		if err != nil {
			return fileLoadedMsg{path: abs, err: err}
		}
		return fileLoadedMsg{path: abs, content: string(data)}
	}
}

// apply stores a tick result. A failed load keeps the last good body on
// screen until a later tick succeeds.
func (m *Model) apply(in session.Instruction) {
	changed := m.dirty || in.Advanced || in.Index != m.current.Index || in.Phase != m.current.Phase
	m.current = in
	if in.HasData() {
		m.lastGood = in
	}
	if changed {
		m.dirty = false
		m.renderBody()
	}
}

func (m *Model) displayed() session.Instruction {
	if m.current.Phase == rotation.Idle && m.current.Err != nil && m.lastGood.HasData() {
		return m.lastGood
	}
	return m.current
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X")) + 1
	footerHeight = 2
	if m.noticeText() != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.body.Width = m.width
	m.body.Height = bodyHeight
	m.table.SetWidth(m.width)
	m.table.SetHeight(max(1, bodyHeight-1))
	m.openInput.Width = max(10, modalInnerWidth(m.width)-lipgloss.Width(m.openInput.Prompt))
}

func (m *Model) renderBody() {
	in := m.displayed()
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	if in.View.Kind == model.KindTable {
		_, bodyHeight, _ := m.layoutHeights()
		m.table = buildTopTable(in.Rows, width, bodyHeight)
		return
	}
	m.body.SetContent(renderChart(in, width))
	m.body.GotoTop()
}

func (m *Model) renderBodyView() string {
	in := m.displayed()
	switch {
	case m.loading && !in.HasData():
		return "Processing file..."
	case !in.HasData():
		return ""
	case in.View.Kind == model.KindTable:
		return tableMuted.Render(m.table.View())
	default:
		return m.body.View()
	}
}

func renderChart(in session.Instruction, width int) string {
	if len(in.Buckets) == 0 {
		return ""
	}
	var buf bytes.Buffer
	opts := stats.ChartOptions{
		Width:      width,
		Height:     plotHeight,
		ForceColor: true,
	}
	if err := stats.RenderChart(&buf, "", in.View, in.Buckets, opts); err != nil {
		return fmt.Sprintf("Failed to render chart: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderHeader() string {
	in := m.displayed()
	heading := in.Heading
	if heading == "" {
		heading = "oradash"
	}
	nav := activeNavStyle.Render(heading)
	position := ""
	if in.Phase == rotation.Displaying {
		position = fmt.Sprintf(" view %d/%d", in.Index+1, views.Len())
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Center, nav, headerStyle.Render(position))
	return fitLines(tabs, m.width, 0) + "\n" + headerStyle.Render(truncateLine(m.summaryLine(in), m.width))
}

func (m *Model) summaryLine(in session.Instruction) string {
	if in.Source == "" {
		if m.path != "" {
			return "File: " + m.path
		}
		return "No file loaded"
	}
	scope := "all time"
	if in.View.Filter == model.FilterRecent {
		scope = "since " + in.Cutoff.String()
	}
	return fmt.Sprintf("File: %s  events=%d  scope=%s", in.Source, in.Events, scope)
}

func (m *Model) renderFooter() string {
	lines := []string{
		renderClock(m.current.Remaining, m.current.Total, m.current.Phase == rotation.Displaying, m.width),
		headerStyle.Render(truncateLine("Views: left/right  Open: o  Reload: r  Scroll: up/down  Quit: q", m.width)),
	}
	if notice := m.noticeText(); notice != "" {
		style := noticeStyle
		if m.fileErr != "" || (m.current.Phase == rotation.Idle && m.current.Err != nil) {
			style = errorStyle
		}
		lines = append(lines, style.Render(truncateLine(notice, m.width)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) noticeText() string {
	if m.fileErr != "" {
		return "Failed to open file: " + m.fileErr
	}
	return m.current.Notice
}

// renderClock draws the countdown to the next view as seconds plus a shrinking bar.
func renderClock(remaining, total time.Duration, running bool, width int) string {
	if !running || total <= 0 {
		return clockStyle.Render("--")
	}
	secs := int(remaining.Seconds())
	label := clockStyle.Render(fmt.Sprintf("%3ds", secs))
	barLen := min(clockBarMaxLen, max(0, width-lipgloss.Width(label)-1))
	if barLen == 0 {
		return label
	}
	filled := int(float64(barLen) * remaining.Seconds() / total.Seconds())
	filled = max(0, min(barLen, filled))
	bar := clockFill.Render(strings.Repeat("█", filled)) + clockEmpty.Render(strings.Repeat("░", barLen-filled))
	return label + " " + bar
}

func (m *Model) initOpenInput() {
	input := textinput.New()
	input.Prompt = "Path: "
	input.Placeholder = "/var/log/oracle/alert.log"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	m.openInput = input
}

func (m *Model) startOpen() (tea.Model, tea.Cmd) {
	m.openMode = true
	m.openInput.SetValue(m.path)
	m.openInput.CursorEnd()
	return m, m.openInput.Focus()
}

func (m *Model) updateOpen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.openMode = false
		m.openInput.Blur()
		return m, nil
	case tea.KeyEnter:
		path := strings.TrimSpace(m.openInput.Value())
		m.openMode = false
		m.openInput.Blur()
		if path == "" {
			return m, nil
		}
		m.loading = true
		return m, m.loadFileCmd(path)
	}
	var cmd tea.Cmd
	m.openInput, cmd = m.openInput.Update(msg)
	return m, cmd
}

func (m *Model) renderOpenModal() string {
	body := []string{
		modalTitleStyle.Render("Open Log File"),
		m.openInput.View(),
		headerStyle.Render("Enter to load / Esc to cancel"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func buildTopTable(rows []model.ErrorSummary, width, height int) table.Model {
	messageWidth := max(minMessageCol, width-codeColWidth-countColWidth-6)
	columns := []table.Column{
		{Title: stats.TopErrorHeaders[0], Width: codeColWidth},
		{Title: stats.TopErrorHeaders[1], Width: messageWidth},
		{Title: stats.TopErrorHeaders[2], Width: countColWidth},
	}
	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, table.Row{r.Code, r.Message, strconv.Itoa(r.Count)})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows),
		table.WithHeight(max(1, height-1)),
		table.WithFocused(true),
	)
	t.SetWidth(width)
	t.SetStyles(topTableStyles())
	return t
}

func topTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}
