package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/tproll/log"
	"go.jacobcolvin.com/tproll/log/logrsink"
	"go.jacobcolvin.com/tproll/log/metricsink"
	"go.jacobcolvin.com/tproll/marker"
)

const (
	watchBufferSize = 256
	watchScrollback = 500
)

var levelKeys = map[string]log.Level{
	"t": log.LevelTrace,
	"d": log.LevelDebug,
	"i": log.LevelInfo,
	"w": log.LevelWarn,
	"e": log.LevelError,
}

func newWatchCmd(a *app) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show demo log traffic in a terminal UI",
		Long: `watch generates log traffic from several sources and displays it live.
Press t, d, i, w or e to change the level and q to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.watch(cmd.Context(), interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 250*time.Millisecond, "delay between demo records")

	return cmd
}

func (a *app) watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %s", log.ErrInvalidArgument, interval)
	}

	pub := log.NewPublisher(log.WithBufferSize(watchBufferSize))
	defer pub.Close() //nolint:errcheck // Close never fails.

	reg := prometheus.NewRegistry()

	sink, err := metricsink.New(pub, reg)
	if err != nil {
		return err
	}

	err = a.core.SetSink(sink)
	if err != nil {
		return err
	}

	sub := pub.Subscribe()
	defer sub.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go runDemo(ctx, a.core, interval)

	_, err = tea.NewProgram(newWatchModel(a.core, sub, reg)).Run()
	if err != nil {
		return fmt.Errorf("running watch: %w", err)
	}

	return nil
}

// entryMsg carries a log entry received from the subscription.
type entryMsg log.Entry

// closedMsg signals that the subscription channel was closed.
type closedMsg struct{}

func waitForEntry(sub *log.Subscription) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-sub.C()
		if !ok {
			return closedMsg{}
		}

		return entryMsg(e)
	}
}

// watchModel is the bubbletea model for the watch command.
type watchModel struct {
	core     *log.Core
	sub      *log.Subscription
	gatherer prometheus.Gatherer
	entries  []log.Entry
	buf      strings.Builder
	height   int
}

func newWatchModel(core *log.Core, sub *log.Subscription, g prometheus.Gatherer) *watchModel {
	return &watchModel{
		core:     core,
		sub:      sub,
		gatherer: g,
		height:   24,
	}
}

// Init starts waiting for the first entry.
func (m *watchModel) Init() tea.Cmd {
	return waitForEntry(m.sub)
}

// Update handles entries, level keys, resize, and quit messages.
func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

		if lvl, ok := levelKeys[key]; ok {
			//nolint:errcheck // Levels in levelKeys are valid.
			m.core.SetLevel(lvl)
		}

	case tea.WindowSizeMsg:
		m.height = msg.Height

	case entryMsg:
		m.entries = append(m.entries, log.Entry(msg))
		if len(m.entries) > watchScrollback {
			m.entries = m.entries[len(m.entries)-watchScrollback:]
		}

		return m, waitForEntry(m.sub)

	case closedMsg:
		return m, tea.Quit
	}

	return m, nil
}

// View renders a header, the most recent entries that fit, and a footer
// with record counts.
func (m *watchModel) View() tea.View {
	m.buf.Reset()

	fmt.Fprintf(&m.buf, "level %s  [t]race [d]ebug [i]nfo [w]arn [e]rror  [q]uit\n\n", m.core.Level())

	rows := max(m.height-4, 1)
	start := max(len(m.entries)-rows, 0)

	for _, e := range m.entries[start:] {
		m.buf.WriteString(formatEntry(e))
		m.buf.WriteByte('\n')
	}

	m.buf.WriteByte('\n')
	m.buf.WriteString(recordCounts(m.gatherer))

	v := tea.NewView(m.buf.String())
	v.AltScreen = true

	return v
}

func formatEntry(e log.Entry) string {
	var sb strings.Builder

	sb.WriteString(e.Time.Format("15:04:05.000"))
	fmt.Fprintf(&sb, " %-5s [%s]", e.Level, e.Logger)

	if e.Marker != "" {
		sb.WriteString(" {" + e.Marker + "}")
	}

	sb.WriteString(": " + e.Message)

	if e.Err != nil {
		sb.WriteString(" (caused by: " + e.Err.Error() + ")")
	}

	return sb.String()
}

// recordCounts summarizes the metricsink counters, e.g. "info=3 warn=1".
func recordCounts(g prometheus.Gatherer) string {
	families, err := g.Gather()
	if err != nil {
		return "metrics unavailable: " + err.Error()
	}

	var parts []string

	for _, mf := range families {
		switch mf.GetName() {
		case "tproll_records_total":
			for _, metric := range mf.GetMetric() {
				n := metric.GetCounter().GetValue()
				if n == 0 || len(metric.GetLabel()) == 0 {
					continue
				}

				parts = append(parts, fmt.Sprintf("%s=%.0f", metric.GetLabel()[0].GetValue(), n))
			}

		case "tproll_records_with_error_total":
			for _, metric := range mf.GetMetric() {
				parts = append(parts, fmt.Sprintf("errors=%.0f", metric.GetCounter().GetValue()))
			}
		}
	}

	return "records: " + strings.Join(parts, " ")
}

var (
	errTimeout  = errors.New("upstream timeout")
	errConflict = errors.New("version conflict")
)

// runDemo logs a mix of records through the logger, slog and logr APIs
// until ctx is done.
func runDemo(ctx context.Context, core *log.Core, interval time.Duration) {
	httpLog := core.Logger("demo.http")
	defer httpLog.RecoverPanic()

	dbLog := core.Logger("demo.db")
	slogger := slog.New(log.NewSlogHandler(core.Logger("demo.slog")))
	logrLogger := logrsink.New(core.Logger("demo")).WithName("controller")

	audit := marker.New("audit", marker.New("security"))
	paths := []string{"/", "/login", "/api/items", "/api/items/42"}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		path := paths[rand.IntN(len(paths))] //nolint:gosec // Demo data.

		took := time.Duration(rand.IntN(900)) * time.Millisecond //nolint:gosec // Demo data.

		switch n % 7 {
		case 0:
			httpLog.Info("GET {} took {}", path, took)
		case 1:
			dbLog.Debug("query rows={}", []int{n, n + 1, n + 2})
		case 2:
			dbLog.Trace("pool stats", map[string]int{"idle": n % 5, "busy": n % 3})
		case 3:
			httpLog.WarnMarker(audit, "login attempt for {} denied", "user"+fmt.Sprint(n%4))
		case 4:
			slogger.Info("cache refreshed", "entries", n*10, slog.Group("ttl", "seconds", 30))
		case 5:
			logrLogger.V(1).Info("reconciling", "object", path, "generation", n)
		case 6:
			if n%2 == 0 {
				dbLog.Error("write {} failed", path, errTimeout)
			} else {
				logrLogger.Error(errConflict, "update rejected", "object", path)
			}
		}
	}
}
