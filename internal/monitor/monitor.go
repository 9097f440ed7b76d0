// Package monitor implements the live environmental display as a
// BubbleTea TUI: one rotating screen per measurement with a sparkline
// history, cycled by key or by waving a hand over the proximity sensor,
// while readings are persisted to the sinks at the logging interval.
package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexb2611/enviroplus/internal/chart"
	"github.com/alexb2611/enviroplus/internal/history"
	"github.com/alexb2611/enviroplus/internal/sampler"
	"github.com/alexb2611/enviroplus/internal/sensor"
)

const historySize = 600 // 10 minutes at 1s refresh

// Options wires the monitor to the rest of the application.
type Options struct {
	Sampler     *sampler.Sampler
	Sinks       []sampler.Sink // persisted at LogInterval, not every refresh
	Observe     func(sensor.Reading)
	Refresh     time.Duration
	LogInterval time.Duration

	ProximityWake  float64
	WakeDebounce   time.Duration
	DisplayTimeout time.Duration

	DataDir string // shown in the title bar next to the REC tag
}

// ── Messages ─────────────────────────────────────────────────────────

type tickMsg time.Time

type readingMsg struct {
	reading sensor.Reading
	time    time.Time
}

// ── Model ────────────────────────────────────────────────────────────

// Model is the BubbleTea model for the live monitor.
type Model struct {
	opts Options

	latest     sensor.Reading
	hasReading bool
	histories  *history.Store

	mode      int
	paused    bool
	displayOn bool
	polling   bool // a sample cycle is in flight; never more than one

	width  int
	height int

	err          error
	startTime    time.Time
	lastPoll     time.Time
	lastLog      time.Time
	lastWake     time.Time
	lastActivity time.Time
}

// New creates the initial model.
func New(opts Options) Model {
	if opts.Refresh <= 0 {
		opts.Refresh = time.Second
	}
	return Model{
		opts:         opts,
		histories:    history.NewStore(historySize),
		startTime:    time.Now(),
		lastActivity: time.Now(),
		displayOn:    true,
		polling:      true, // Init issues the first poll
	}
}

// ── Commands ─────────────────────────────────────────────────────────

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.Refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) pollCmd() tea.Cmd {
	return func() tea.Msg {
		now := time.Now()
		return readingMsg{reading: m.opts.Sampler.Sample(now), time: now}
	}
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.pollCmd(), m.tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		m.lastActivity = time.Now()
		if !m.displayOn {
			// Any key wakes the display without acting.
			m.displayOn = true
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "right", "m":
			m.mode = (m.mode + 1) % len(modes)
		case "shift+tab", "left":
			m.mode = (m.mode + len(modes) - 1) % len(modes)
		case " ", "p":
			m.paused = !m.paused
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		// A cycle slowed by I²C timeouts must not overlap the next one:
		// the compensator's rolling window is touched by one goroutine.
		if m.paused || m.polling {
			return m, m.tickCmd()
		}
		m.polling = true
		return m, tea.Batch(m.pollCmd(), m.tickCmd())

	case readingMsg:
		m.polling = false
		m = m.applyReading(msg.reading, msg.time)
	}

	return m, nil
}

// applyReading folds one sampling cycle into the model: histories, wake
// handling, display timeout, and interval-gated persistence.
func (m Model) applyReading(r sensor.Reading, now time.Time) Model {
	m.latest = r
	m.hasReading = true
	m.lastPoll = now

	for _, mode := range modes {
		if v := mode.value(r); v != nil {
			m.histories.Record(mode.key, *v, now)
		}
	}
	if r.CPUTemp != nil {
		m.histories.Record("cpu_temp", *r.CPUTemp, now)
	}

	if m.opts.Observe != nil {
		m.opts.Observe(r)
	}

	// Hand over the proximity sensor: wake the display and advance the
	// mode, debounced so one slow wave is one step.
	if r.Proximity != nil && *r.Proximity > m.opts.ProximityWake && m.opts.ProximityWake > 0 {
		if now.Sub(m.lastWake) >= m.opts.WakeDebounce {
			if m.displayOn {
				m.mode = (m.mode + 1) % len(modes)
			}
			m.displayOn = true
			m.lastWake = now
			m.lastActivity = now
		}
	}

	if m.opts.DisplayTimeout > 0 && now.Sub(m.lastActivity) > m.opts.DisplayTimeout {
		m.displayOn = false
	}

	if m.opts.LogInterval > 0 && now.Sub(m.lastLog) >= m.opts.LogInterval {
		m.lastLog = now
		for _, sink := range m.opts.Sinks {
			if err := sink.Write(context.Background(), r); err != nil {
				m.err = fmt.Errorf("sink: %w", err)
			}
		}
	}

	return m
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorOk       = lipgloss.Color("78")
	colorWarn     = lipgloss.Color("220")
	colorHigh     = lipgloss.Color("208")
	colorCrit     = lipgloss.Color("196")
	colorPaused   = lipgloss.Color("196")
)

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	if !m.displayOn {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(2, 2).
			Render("display sleeping — wave over the sensor or press any key")
	}

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string

	sections = append(sections, m.renderTitleBar(contentWidth))

	if m.err != nil {
		errBox := lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Width(contentWidth).
			Padding(0, 1).
			Render(fmt.Sprintf(" ERROR: %v", m.err))
		sections = append(sections, errBox)
	}

	if !m.hasReading {
		waiting := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(contentWidth).
			Align(lipgloss.Center).
			Padding(2, 0).
			Render("Waiting for sensor data...")
		sections = append(sections, waiting)
	} else {
		sections = append(sections, m.renderModePanel(contentWidth))
	}

	sections = append(sections, m.renderFooter(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("ENVIRO+ LOGGER")

	var statusParts []string

	uptime := lipgloss.NewStyle().
		Foreground(colorDim).
		Render(fmt.Sprintf("up %s", fmtDuration(time.Since(m.startTime))))
	statusParts = append(statusParts, uptime)

	if !m.lastPoll.IsZero() {
		ts := lipgloss.NewStyle().
			Foreground(colorDim).
			Render(m.lastPoll.Format("15:04:05"))
		statusParts = append(statusParts, ts)
	}

	if m.paused {
		p := lipgloss.NewStyle().
			Foreground(colorPaused).
			Bold(true).
			Render("PAUSED")
		statusParts = append(statusParts, p)
	}

	if len(m.opts.Sinks) > 0 {
		rec := lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Render("REC") +
			lipgloss.NewStyle().
				Foreground(colorDim).
				Render(" "+m.opts.DataDir)
		statusParts = append(statusParts, rec)
	}

	sep := lipgloss.NewStyle().Foreground(colorDim).Render(" │ ")
	right := strings.Join(statusParts, sep)

	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + filler + right)
}

func (m Model) renderModePanel(totalWidth int) string {
	mode := modes[m.mode]

	innerWidth := totalWidth - 4
	if innerWidth < 30 {
		innerWidth = 30
	}
	chartWidth := innerWidth - 8
	if chartWidth > 140 {
		chartWidth = 140
	}

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	var rows []string

	// Mode header with position dots, e.g. "Temperature  ●○○○○○○".
	dots := make([]string, len(modes))
	for i := range modes {
		if i == m.mode {
			dots[i] = lipgloss.NewStyle().Foreground(colorTitleFg).Render("●")
		} else {
			dots[i] = dimS.Render("○")
		}
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(colorLabel).Render(mode.label) +
		"  " + strings.Join(dots, "")
	rows = append(rows, header)

	cur := mode.value(m.latest)
	var valueText string
	if cur != nil {
		valueText = chart.RenderValue(*cur, mode.unit, mode.warn, mode.alert, mode.hasWarn, mode.hasAlert)
	} else {
		valueText = dimS.Render("   --" + mode.unit + "  (sensor error)")
	}
	rows = append(rows, "")
	rows = append(rows, "  "+valueText)

	if cur != nil {
		rows = append(rows, "  "+chart.RenderThresholdScale(*cur, mode.rangeMin, mode.rangeMax,
			mode.warn, mode.alert, mode.hasWarn, mode.hasAlert, chartWidth))
	}

	hist := m.histories.Get(mode.key)
	if hist != nil {
		frameL := lipgloss.NewStyle().Foreground(colorBorder).Render("▕")
		frameR := lipgloss.NewStyle().Foreground(colorBorder).Render("▏")

		pts := hist.LastNPoints(chartWidth)
		spark := chart.RenderSparklinePoints(pts, chartWidth, mode.rangeMin, mode.rangeMax,
			mode.warn, mode.alert, mode.hasWarn, mode.hasAlert)
		rows = append(rows, "")
		rows = append(rows, "  "+frameL+spark+frameR)

		timeline := chart.RenderTimeline(pts, chartWidth)
		if strings.TrimSpace(timeline) != "" {
			rows = append(rows, "   "+timeline)
		}

		stats := dimS.Render("  avg") + valS.Render(fmt.Sprintf("%7.1f", hist.Avg())) +
			dimS.Render("  lo") + valS.Render(fmt.Sprintf("%7.1f", hist.Min)) +
			dimS.Render("  pk") + valS.Render(fmt.Sprintf("%7.1f", hist.Peak))
		rows = append(rows, stats)
	}

	if len(m.latest.Errors) > 0 {
		rows = append(rows, "")
		rows = append(rows, lipgloss.NewStyle().Foreground(colorHigh).
			Render("  degraded: "+m.latest.Errors.Join()))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(totalWidth).
		Render(content)
}

func (m Model) renderFooter(width int) string {
	okS := lipgloss.NewStyle().Foreground(colorOk).Render("██")
	warnS := lipgloss.NewStyle().Foreground(colorWarn).Render("██")
	highS := lipgloss.NewStyle().Foreground(colorHigh).Render("██")
	critS := lipgloss.NewStyle().Foreground(colorCrit).Render("██")
	tickS := lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Render("│")

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	legend := okS + dimS.Render(" ok ") +
		warnS + dimS.Render(" warm ") +
		highS + dimS.Render(" high ") +
		critS + dimS.Render(" alert ") +
		tickS + dimS.Render(" 1min")

	keys := dimS.Render("q") + lipgloss.NewStyle().Foreground(colorLabel).Render(":quit") +
		dimS.Render("  tab") + lipgloss.NewStyle().Foreground(colorLabel).Render(":mode") +
		dimS.Render("  p") + lipgloss.NewStyle().Foreground(colorLabel).Render(":pause")

	gap := width - lipgloss.Width(legend) - lipgloss.Width(keys) - 4
	if gap < 1 {
		gap = 1
	}
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(legend + filler + keys)
}

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	min := d / time.Minute
	d -= min * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, min, s)
	}
	return fmt.Sprintf("%dm%02ds", min, s)
}
