// Package tui provides the interactive Bubble Tea dashboard for eventoo.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/planner"
	"github.com/theirongolddev/eventoo/internal/simulator"
	"github.com/theirongolddev/eventoo/internal/tui/components"
	"github.com/theirongolddev/eventoo/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Saver persists plan snapshots and events as the simulation runs.
type Saver interface {
	SavePlan(p *model.Plan) error
	AppendEvents(events []simulator.Event) error
}

// Options configures a new App.
type Options struct {
	Simulator *simulator.Simulator
	// Step is the simulated time advanced per tick.
	Step time.Duration
	// Plan skips the form and simulates an existing draft plan.
	Plan     *model.Plan
	Defaults PlanValues
	Saver    Saver
	// Now supplies the wall-clock start of new plans.
	Now func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	sim   *simulator.Simulator
	exec  *simulator.Execution
	saver Saver
	now   func() time.Time

	// Plan form
	form     *huh.Form
	formVals *PlanValues

	// Simulation state
	clock    time.Time
	speedIdx int
	paused   bool
	finished bool
	banner   string
	err      error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	cursor    int
	spinner   spinner.Model
}

// speeds are the selectable simulated durations per tick.
var speeds = []time.Duration{
	time.Hour,
	3 * time.Hour,
	6 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
	48 * time.Hour,
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
	tickInterval     = 400 * time.Millisecond
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	sim := opts.Simulator
	if sim == nil {
		sim = simulator.New()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	a := App{
		sim:      sim,
		saver:    opts.Saver,
		now:      now,
		speedIdx: speedIndex(opts.Step),
		spinner:  sp,
	}

	if opts.Plan != nil {
		a.activate(opts.Plan)
		return a
	}

	vals := opts.Defaults
	a.formVals = &vals
	a.form = newPlanForm(a.formVals)
	return a
}

func speedIndex(step time.Duration) int {
	for i, s := range speeds {
		if step <= s {
			return i
		}
	}
	return len(speeds) - 1
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick, tickCmd()}
	if a.form != nil {
		cmds = append(cmds, a.form.Init())
	}
	return tea.Batch(cmds...)
}

// Execution returns the running execution, or nil while the form is shown.
func (a App) Execution() *simulator.Execution { return a.exec }

// Err returns the last error shown in the dashboard.
func (a App) Err() error { return a.err }

func (a *App) activate(p *model.Plan) {
	start := a.now()
	exec, err := a.sim.Activate(p, start)
	if err != nil {
		a.err = err
		return
	}
	a.exec = exec
	a.clock = start
	a.persist(exec.Log())
}

func (a *App) persist(events []simulator.Event) {
	if a.saver == nil || a.exec == nil {
		return
	}
	if err := a.saver.SavePlan(a.exec.Plan()); err != nil {
		a.err = fmt.Errorf("saving plan: %w", err)
		return
	}
	if len(events) > 0 {
		if err := a.saver.AppendEvents(events); err != nil {
			a.err = fmt.Errorf("saving events: %w", err)
		}
	}
}

func (a *App) advance() {
	if a.exec == nil || a.finished {
		return
	}
	a.clock = a.clock.Add(speeds[a.speedIdx])
	events := a.sim.Tick(a.exec, a.clock)
	a.observe(events)
	a.persist(events)
	if a.exec.Done() {
		a.finished = true
		a.paused = true
	}
}

func (a *App) observe(events []simulator.Event) {
	for _, ev := range events {
		switch ev.Type {
		case simulator.EventMilestoneUnlocked, simulator.EventPlanCompleted:
			a.banner = ev.Message
		}
	}
}

func (a *App) startCurrent() {
	if a.exec == nil {
		return
	}
	c := a.exec.Current()
	if c == nil || c.Status != model.ChallengeReady {
		a.banner = "No challenge is ready to start"
		return
	}
	events, err := a.sim.Start(a.exec, c.ID, a.clock)
	a.observe(events)
	a.persist(events)
	if err != nil {
		a.err = err
		return
	}
	a.banner = fmt.Sprintf("Started %q", c.Title)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(min(msg.Width, 72)).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if a.exec == nil || a.showHelp {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.form != nil {
			return a.updateForm(msg)
		}
		return a.handleKey(msg.String())

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tickMsg:
		if a.exec != nil && !a.paused {
			a.advance()
		}
		return a, tickCmd()
	}

	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) handleKey(key string) (tea.Model, tea.Cmd) {
	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q", "esc":
		return a, tea.Quit
	case " ":
		if !a.finished {
			a.paused = !a.paused
		}
	case "+", "=":
		if a.speedIdx < len(speeds)-1 {
			a.speedIdx++
		}
	case "-", "_":
		if a.speedIdx > 0 {
			a.speedIdx--
		}
	case "n":
		if a.paused && !a.finished {
			a.advance()
		}
	case "s":
		a.startCurrent()
	case "j", "down":
		if a.exec != nil && a.cursor < len(a.exec.Plan().Challenges)-1 {
			a.cursor++
		}
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if len(key) == 1 {
			if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		a.form = nil
		req, err := a.formVals.Request(a.now())
		if err != nil {
			a.err = err
			return a, tea.Quit
		}
		p, err := planner.Generate(req, a.now())
		if err != nil {
			a.err = err
			return a, tea.Quit
		}
		a.activate(p)
		return a, nil
	case huh.StateAborted:
		a.form = nil
		a.err = errors.New("plan form aborted")
		return a, tea.Quit
	}
	return a, cmd
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.form != nil {
		return a.viewForm()
	}
	if a.exec == nil {
		return a.viewError()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  eventoo needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewForm() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2).
		Render(a.form.View())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

func (a App) viewError() string {
	t := theme.Active
	style := lipgloss.NewStyle().Foreground(t.Red).Bold(true)
	msg := "  Could not start the simulation"
	if a.err != nil {
		msg += ": " + a.err.Error()
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		style.Render(msg)+"\n\n"+lipgloss.NewStyle().Foreground(t.TextMuted).Render("  press q to quit"))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	bindings := []struct{ key, desc string }{
		{"o c w a", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Move challenge cursor"},
		{"space", "Pause / Resume"},
		{"n", "Step once while paused"},
		{"+ -", "Faster / Slower"},
		{"s", "Start the ready challenge"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.renderHeadline(w)
	statusBar := components.RenderStatusBar(w, a.clock, speeds[a.speedIdx], a.paused)

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderOverviewTab(cw)
	case 1:
		content = a.renderChallengesTab(cw, contentH)
	case 2:
		content = a.renderWeeksTab(cw)
	case 3:
		content = a.renderActivityTab(cw, contentH)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// renderHeadline shows the plan, its funding bar and the latest banner.
func (a App) renderHeadline(w int) string {
	t := theme.Active
	p := a.exec.Plan()

	accent := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)
	bad := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	state := a.spinner.View()
	switch {
	case p.Status == model.PlanCompleted:
		state = "✓"
	case a.exec.Exhausted():
		state = "✗"
	case a.paused:
		state = "‖"
	}

	left := accent.Render(fmt.Sprintf(" %s %s ", state, p.Destination)) +
		muted.Render(fmt.Sprintf("%s ", p.Status))
	bar := components.CompactBar("funded", float64(p.Progress())/100, 34)

	line := left + bar
	switch {
	case a.err != nil:
		line += bad.Render("  " + a.err.Error())
	case a.banner != "":
		line += warn.Render("  " + truncStr(a.banner, max(10, w-lipgloss.Width(line)-3)))
	}
	return lipgloss.NewStyle().Background(t.Surface).Width(w).Render(line)
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
