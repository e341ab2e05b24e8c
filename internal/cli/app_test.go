package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/internal/config"
	"timesheet/internal/domain"
	"timesheet/internal/store"
	"timesheet/internal/store/memory"
)

// cliHarness runs each command as a separate invocation against one shared store,
// the way successive shell commands share the database file.
type cliHarness struct {
	t     *testing.T
	store *memory.Store
	clock clockwork.FakeClock
	dir   string
}

func newCLIHarness(t *testing.T) *cliHarness {
	return &cliHarness{
		t:     t,
		store: memory.New(),
		clock: clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
		dir:   t.TempDir(),
	}
}

func (h *cliHarness) run(args ...string) (string, error) {
	cfg := config.NewConfig()
	cfg.Store.Driver = config.DriverMemory
	cfg.Store.Dir = h.dir

	var out bytes.Buffer
	root := NewRootCommand(cfg,
		WithClock(h.clock),
		WithStoreOpener(func(*config.Config) (store.Closer, error) { return h.store, nil }),
	)
	root.SetArgs(args)
	root.SetOutput(&out)
	err := root.Execute()
	return out.String(), err
}

func (h *cliHarness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "ts %s", strings.Join(args, " "))
	return out
}

func (h *cliHarness) activeLabel() string {
	h.t.Helper()
	docs, err := h.store.List(context.Background(), store.ActiveTimers, store.Filter{})
	require.NoError(h.t, err)
	require.Len(h.t, docs, 1)
	label, _ := docs[0].Data.String(domain.FieldLabel)
	return label
}

func TestStartStatusStop(t *testing.T) {
	h := newCLIHarness(t)

	out := h.mustRun("start", "client", "call")
	assert.Contains(t, out, "Started timer at")
	assert.Contains(t, out, "client call")
	assert.Equal(t, "client call", h.activeLabel(), "label is written before the command exits")

	h.clock.Advance(30 * time.Minute)
	out = h.mustRun("status")
	assert.Contains(t, out, "running 00:30:00 since")
	assert.Contains(t, out, "client call ($75.00 so far)")

	out = h.mustRun("stop")
	assert.Equal(t, "Logged 00:30:00: client call ($75.00)\n", out)

	out = h.mustRun("status")
	assert.Equal(t, "idle\n", out)
}

func TestInvalidTransitions(t *testing.T) {
	h := newCLIHarness(t)

	_, err := h.run("stop")
	require.Error(t, err)
	assert.Equal(t, "failed to stop timer: cannot end while idle", err.Error())

	_, err = h.run("label", "nothing running")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot edit label while idle")

	h.mustRun("start")
	_, err = h.run("start")
	require.Error(t, err)
	assert.Equal(t, "failed to start timer: cannot start while running", err.Error())
}

func TestLabelCommand(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun("start")

	out := h.mustRun("label", "design", "review")
	assert.Equal(t, "Label: design review\n", out)
	assert.Equal(t, "design review", h.activeLabel())

	out = h.mustRun("label")
	assert.Equal(t, "Label: (no label)\n", out)
	assert.Equal(t, "", h.activeLabel())
}

func TestStartRejectsInvalidLabel(t *testing.T) {
	h := newCLIHarness(t)

	_, err := h.run("start", strings.Repeat("x", 300))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start timer")

	out := h.mustRun("status")
	assert.Equal(t, "idle\n", out, "nothing is started when the label is rejected")
}

func (h *cliHarness) logEntry(label string, d time.Duration) {
	h.t.Helper()
	h.mustRun("start", label)
	h.clock.Advance(d)
	h.mustRun("stop")
}

func TestLogsAndSummary(t *testing.T) {
	h := newCLIHarness(t)

	out := h.mustRun("logs")
	assert.Equal(t, "No log entries\n", out)

	h.logEntry("first", time.Hour)
	h.logEntry("second", 30*time.Minute)

	out = h.mustRun("logs")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "1.")
	assert.Contains(t, lines[0], "second")
	assert.Contains(t, lines[1], "first")
	assert.Contains(t, lines[2], "Total 01:30:00  $225.00")

	out = h.mustRun("logs", "1")
	assert.NotContains(t, out, "first")
	assert.Contains(t, out, "Total 01:30:00", "totals cover every entry")

	_, err := h.run("logs", "zero")
	assert.Error(t, err)

	out = h.mustRun("summary")
	assert.Contains(t, out, "Entries:  2")
	assert.Contains(t, out, "Time:     01:30:00")
	assert.Contains(t, out, "Earnings: $225.00")
	assert.Contains(t, out, "Goal:     $50000.00")
}

func TestEditCommand(t *testing.T) {
	h := newCLIHarness(t)
	h.logEntry("call", 30*time.Minute)

	out := h.mustRun("edit", "1", "label=design review", "rate=120")
	assert.Equal(t, "Updated 00:30:00: design review at $120.00/h\n", out)

	out = h.mustRun("logs")
	assert.Contains(t, out, "design review")
	assert.Contains(t, out, "$60.00")

	out = h.mustRun("edit", "1", "rate=default")
	assert.Contains(t, out, "at $150.00/h")

	_, err := h.run("edit", "1", "out=2024-03-01T10:00:00Z")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only label and rate can be edited")

	_, err = h.run("edit", "1", "rate=-5")
	assert.Error(t, err)

	_, err = h.run("edit", "1", "rate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected field=value")
}

func TestDeleteCommand(t *testing.T) {
	h := newCLIHarness(t)
	h.logEntry("keep", time.Hour)
	h.logEntry("drop", 15*time.Minute)

	_, err := h.run("delete", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "choose a number between 1 and 2")

	_, err = h.run("delete", "no-such-key")
	assert.Error(t, err)

	out := h.mustRun("delete", "1")
	assert.Equal(t, "Deleted 00:15:00: drop\n", out)

	out = h.mustRun("logs")
	assert.Contains(t, out, "keep")
	assert.NotContains(t, out, "drop")
}

func TestDeleteByKey(t *testing.T) {
	h := newCLIHarness(t)
	h.logEntry("by key", time.Hour)

	docs, err := h.store.List(context.Background(), store.Logs, store.Filter{})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	h.mustRun("delete", docs[0].Key)

	docs, err = h.store.List(context.Background(), store.Logs, store.Filter{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestOutputCommand(t *testing.T) {
	h := newCLIHarness(t)
	h.logEntry("client call", 30*time.Minute)

	out := h.mustRun("output", "format=csv")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Key,Start Time,End Time,Duration (hours),Rate,Earnings,Label", lines[0])
	assert.Contains(t, lines[1], "2024-03-01T09:00:00Z,2024-03-01T09:30:00Z,0.50,150.00,75.00,client call")

	out = h.mustRun("output", "format=yaml")
	assert.Contains(t, out, "logs:")
	assert.Contains(t, out, "label: client call")
	assert.Contains(t, out, "earnings: 75")

	_, err := h.run("output", "format=xml")
	assert.Error(t, err)
}

func TestRateFlagOverridesConfig(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun("start", "discounted")
	h.clock.Advance(30 * time.Minute)

	out := h.mustRun("stop", "--rate", "100")
	assert.Equal(t, "Logged 00:30:00: discounted ($50.00)\n", out)
}

func TestStoreOpenFailure(t *testing.T) {
	cfg := config.NewConfig()
	root := NewRootCommand(cfg, WithStoreOpener(func(*config.Config) (store.Closer, error) {
		return nil, stderrors.New("disk full")
	}))
	root.SetArgs([]string{"status"})
	root.SetOutput(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, "failed to open store: disk full", err.Error())
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00:00", formatClock(-time.Second))
	assert.Equal(t, "34:17:36", formatClock(123456789*time.Millisecond))
}
