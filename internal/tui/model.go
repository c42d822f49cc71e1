package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/avolkov/keystride/internal/engine"
	"github.com/avolkov/keystride/internal/metrics"
	"github.com/avolkov/keystride/internal/model"
	"github.com/avolkov/keystride/internal/practice"
	"github.com/avolkov/keystride/internal/replay"
	"github.com/avolkov/keystride/internal/report"
	"github.com/avolkov/keystride/internal/store"
)

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	fixCorrectStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAF5F")).Strikethrough(true)
	fixErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#AF5F5F")).Strikethrough(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	pausedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

type viewMode int

const (
	modeTyping viewMode = iota
	modeResults
)

// idlePauseMsg is delivered by the idle watchdog notifier.
type idlePauseMsg struct{}

// IdlePause builds the message the idle notifier sends into the
// program's event loop.
func IdlePause() tea.Msg {
	return idlePauseMsg{}
}

// resultsMsg carries the report built on the background worker.
type resultsMsg struct {
	report string
	miner  replay.Miner
	err    error
}

// Model implements the Bubble Tea typing UI. It is the host surface:
// it translates key messages into edit events for the engine and
// renders state the engine owns.
type Model struct {
	opts  model.Options
	store *store.Store

	session *engine.Session
	source  []rune
	pos     int

	notifyIdle func()

	width  int
	height int

	mode       viewMode
	keystrokes int
	status     engine.Status

	vp        viewport.Model
	vpReady   bool
	resultOut string
	miner     replay.Miner
	infoMsg   string
}

// NewModel constructs a typing TUI model. The store may be nil, in
// which case sessions are not persisted.
func NewModel(text string, opts model.Options, st *store.Store) *Model {
	m := &Model{opts: opts, store: st}
	m.startSession(text)
	return m
}

// SetIdleNotifier installs the function the idle watchdog uses to
// signal the event loop, typically p.Send of the running program.
func (m *Model) SetIdleNotifier(fn func()) {
	m.notifyIdle = fn
	m.session.SetIdleFunc(fn)
}

func (m *Model) startSession(text string) {
	if m.session != nil {
		m.session.Close()
	}
	m.session = engine.New(text, m.opts)
	if m.notifyIdle != nil {
		m.session.SetIdleFunc(m.notifyIdle)
	}
	m.source = m.session.SourceRunes()
	m.pos = 0
	m.mode = modeTyping
	m.keystrokes = 0
	m.status = m.session.Status()
	m.miner = replay.Miner{}
	m.resultOut = ""
	m.infoMsg = ""
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()
		return m, nil
	case idlePauseMsg:
		m.session.Pause()
		return m, nil
	case resultsMsg:
		if msg.err != nil {
			m.infoMsg = fmt.Sprintf("failed to build results: %v", msg.err)
			return m, nil
		}
		m.miner = msg.miner
		m.resultOut = msg.report
		m.mode = modeResults
		m.resizeViewport()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.session.Close()
			return m, tea.Quit
		}
		if m.mode == modeResults {
			return m.updateResults(msg)
		}
		return m.updateTyping(msg)
	default:
		return m, nil
	}
}

func (m *Model) updateTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		switch m.session.State() {
		case engine.StateRunning:
			m.session.Pause()
		case engine.StatePaused:
			m.session.Resume()
		}
		return m, nil
	case tea.KeyBackspace, tea.KeyDelete:
		m.handleBackspace()
		return m, nil
	case tea.KeySpace:
		return m, m.handleRunes([]rune{' '})
	case tea.KeyEnter:
		return m, m.handleRunes([]rune{'\n'})
	case tea.KeyRunes:
		return m, m.handleRunes(msg.Runes)
	default:
		return m, nil
	}
}

func (m *Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "w":
		text, err := practice.MistypedWords(m.miner.Words, m.opts.DowncaseWords)
		if err != nil {
			m.infoMsg = "no mistyped words to practice"
			return m, nil
		}
		m.startSession(text)
		return m, nil
	case "t":
		text, err := practice.HardTransitions(m.miner.Transitions, m.opts.MinTransitions, practice.NewRand())
		if err != nil {
			m.infoMsg = "no hard transitions to practice"
			return m, nil
		}
		m.startSession(text)
		return m, nil
	case "r":
		m.startSession(string(m.source))
		return m, nil
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *Model) handleBackspace() {
	if m.pos == 0 || m.session.State() == engine.StateFinished {
		return
	}
	if m.session.State() == engine.StatePaused {
		m.session.Resume()
	}
	m.pos--
	if _, err := m.session.ProcessEdit(engine.Edit{Start: m.pos, End: m.pos, Replaced: 1}, nil); err != nil {
		m.pos++
		return
	}
	m.refreshStatus()
}

func (m *Model) handleRunes(runes []rune) tea.Cmd {
	for _, r := range runes {
		if m.session.State() == engine.StateFinished {
			return nil
		}
		if m.session.State() == engine.StatePaused {
			m.session.Resume()
		}
		res, err := m.session.ProcessEdit(engine.Edit{
			Start:          m.pos,
			End:            m.pos + 1,
			PlainKeystroke: true,
		}, []rune{r})
		if err != nil {
			return nil
		}
		m.pos++
		m.refreshStatus()
		if res == engine.EditCompleted {
			return m.buildResultsCmd()
		}
	}
	return nil
}

// refreshStatus recomputes the cached footer status every
// RefreshEvery keystrokes to bound rendering cost.
func (m *Model) refreshStatus() {
	m.keystrokes++
	if m.keystrokes >= m.opts.RefreshEvery {
		m.keystrokes = 0
		m.status = m.session.Status()
	}
}

// buildResultsCmd hands the sealed runs to a background worker that
// renders the replays, assembles the report, and persists the
// session. The engine is finished by now, so the snapshots are
// immutable.
func (m *Model) buildResultsCmd() tea.Cmd {
	sess := m.session
	st := m.store
	opts := m.opts
	source := sess.SourceRunes()

	var snapshots []engine.Run
	for _, run := range sess.RunsChronological() {
		snapshots = append(snapshots, run.Snapshot())
	}
	entries, errCount, corrections, _ := sess.Counters()
	rec := model.SessionRecord{
		ID:          uuid.NewString(),
		StartedAt:   sess.StartedAt(),
		EndedAt:     sess.EndedAt(),
		SourceLen:   sess.Len(),
		Entries:     entries,
		Errors:      errCount,
		Corrections: corrections,
		Runs:        len(snapshots),
		DurationMs:  sess.Elapsed().Milliseconds(),
	}

	return func() tea.Msg {
		var miner replay.Miner
		var replays []string
		runPtrs := make([]*engine.Run, len(snapshots))
		for i := range snapshots {
			runPtrs[i] = &snapshots[i]
			res := replay.Build(snapshots[i], source)
			miner.Absorb(res)
			replays = append(replays, replay.Render(res.Segments, styleSegment))
		}

		runMetrics := report.ComputeRuns(runPtrs, opts.WordLength)
		overall := report.ComputeOverall(runPtrs, opts.WordLength)
		var b strings.Builder
		if err := report.Render(&b, report.Data{
			Runs:        runMetrics,
			Overall:     overall,
			Replays:     replays,
			Words:       miner.Words,
			Transitions: miner.Transitions,
		}); err != nil {
			return resultsMsg{err: err}
		}

		if st != nil {
			rec.GrossWPM = overall.GrossWPM
			rec.NetWPM = overall.NetWPM
			rec.Accuracy = overall.Accuracy
			summaries := runSummaries(rec.ID, runPtrs, runMetrics)
			if err := st.InsertSession(context.Background(), rec, summaries, miner.Words, miner.Transitions); err != nil {
				logErrf("failed to save session: %v\n", err)
			}
		}
		return resultsMsg{report: b.String(), miner: miner}
	}
}

// runSummaries pairs per-run metrics with their run IDs, skipping
// empty runs the same way ComputeRuns does.
func runSummaries(sessionID string, runs []*engine.Run, figures []metrics.RunMetrics) []model.RunSummary {
	out := make([]model.RunSummary, 0, len(figures))
	i := 0
	for _, run := range runs {
		if run.Len() == 0 || i >= len(figures) {
			continue
		}
		m := figures[i]
		out = append(out, model.RunSummary{
			SessionID:  sessionID,
			RunID:      run.ID,
			Seq:        i + 1,
			Chars:      m.Chars,
			Errors:     m.Errors,
			DurationMs: int64(m.Seconds * 1000),
			GrossWPM:   m.GrossWPM,
			NetWPM:     m.NetWPM,
			Accuracy:   m.Accuracy,
		})
		i++
	}
	return out
}

func styleSegment(kind replay.Kind, text string) string {
	switch kind {
	case replay.KindCorrect:
		return correctStyle.Render(text)
	case replay.KindError:
		return incorrectStyle.Render(text)
	case replay.KindFixCorrect:
		return fixCorrectStyle.Render(text)
	case replay.KindFixError:
		return fixErrorStyle.Render(text)
	default:
		return text
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.mode == modeResults {
		return m.viewResults()
	}
	return m.viewTyping()
}

func (m *Model) viewTyping() string {
	if len(m.source) == 0 {
		return ""
	}
	cursorIndex := -1
	if m.pos < len(m.source) {
		cursorIndex = m.pos
	}
	styledRunes := buildStyledRunes(m.source, m.session.ProgressAt, cursorIndex)
	if m.width == 0 || m.height == 0 {
		return renderStyledRunes(styledRunes)
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	wrapped := wrapStyledRunes(styledRunes, contentWidth)
	content := lipgloss.NewStyle().Width(contentWidth).Render(wrapped)
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) viewResults() string {
	if !m.vpReady {
		return m.resultOut
	}
	help := footerStyle.Render("w practice words · t practice transitions · r retry · q quit")
	if m.infoMsg != "" {
		help = footerStyle.Render(m.infoMsg)
	}
	return m.vp.View() + "\n" + help
}

func (m *Model) resizeViewport() {
	if m.width == 0 || m.height == 0 {
		return
	}
	if !m.vpReady {
		m.vp = viewport.New(m.width, m.height-1)
		m.vpReady = true
	} else {
		m.vp.Width = m.width
		m.vp.Height = m.height - 1
	}
	if m.resultOut != "" {
		m.vp.SetContent(m.resultOut)
	}
}

func (m *Model) renderFooter() string {
	if m.session.State() == engine.StatePaused {
		return pausedStyle.Render("Paused · press Esc or keep typing to resume")
	}
	st := m.status
	segments := []string{fmt.Sprintf("Progress %d%%", int(st.Progress*100))}
	if st.SpeedOK {
		segments = append(segments, fmt.Sprintf("Net %.1f WPM", st.NetWPM))
		segments = append(segments, fmt.Sprintf("Gross %.1f WPM", st.GrossWPM))
	}
	if st.AccuracyOK {
		segments = append(segments, fmt.Sprintf("Acc %.1f%%", st.Accuracy))
	}
	segments = append(segments, report.FormatSeconds(st.Elapsed.Seconds()))
	segments = append(segments, fmt.Sprintf("Err %d", st.Errors))
	segments = append(segments, fmt.Sprintf("Fix %d", st.Corrections))
	return footerStyle.Render(strings.Join(segments, "  "))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
