package diag

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorSeparatesSeverities(t *testing.T) {
	var c Collector
	Warn(&c, CodeSplitParts, "fragment 3", "split produced %d parts", 1)
	Violation(&c, CodeDuplicateName, "1-0", "name already used")

	require.Len(t, c.Findings, 2)
	assert.Len(t, c.Errors(), 1)
	assert.Len(t, c.Warnings(), 1)
	assert.True(t, c.Has(CodeDuplicateName))
	assert.False(t, c.Has(CodeAnchor))

	c.Reset()
	assert.Empty(t, c.Findings)
}

func TestFindingError(t *testing.T) {
	f := Finding{Code: CodeAnchor, Severity: SeverityWarning, Message: "no candidate vertex"}
	assert.Equal(t, "[warning] anchor-unresolved: no candidate vertex", f.Error())

	f.Subject = "pt 5"
	assert.Equal(t, "[warning] anchor-unresolved pt 5: no candidate vertex", f.Error())
}

func TestMultiSkipsNil(t *testing.T) {
	var a, b Collector
	r := Multi(&a, nil, &b)
	Warn(r, CodeAmbiguousJoin, "", "two candidates")
	assert.Len(t, a.Findings, 1)
	assert.Len(t, b.Findings, 1)
}

func TestLogReporterUsesLevel(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	LogReporter{Logger: l}.Report(Finding{Code: CodeDuplicateName, Severity: SeverityError, Message: "dup"})

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "code=duplicate-name")
}

func TestSetLoggerNilRestoresSilence(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	Logger().Warn("visible")
	assert.Contains(t, buf.String(), "visible")

	SetLogger(nil)
	buf.Reset()
	Logger().Warn("hidden")
	assert.Empty(t, buf.String())
}
