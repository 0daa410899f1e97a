// Package diag is the integrity diagnostic channel shared by the path
// assembler and the topology namer. Findings are reported at the moment
// they are detected; whether a finding also aborts the current pass is up
// to the caller.
package diag

import (
	"context"
	"fmt"
	"log/slog"
)

// Severity indicates whether a finding is an integrity violation or an
// advisory warning.
type Severity int

const (
	SeverityError   Severity = iota // integrity violation
	SeverityWarning                 // degraded but usable result
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Code classifies a finding.
type Code string

const (
	CodeDuplicateName  Code = "duplicate-name"
	CodeSplitParts     Code = "split-parts"
	CodeEmptySweepPath Code = "empty-sweep-path"
	CodeAnchor         Code = "anchor-unresolved"
	CodeAmbiguousJoin  Code = "ambiguous-join"
	CodeUnchainedEdge  Code = "unchained-boundary-edge"
	CodeUnnamedFace    Code = "unnamed-face"
	CodeDiscontinuous  Code = "discontinuous-path"
)

// Finding describes a single integrity finding.
type Finding struct {
	Code     Code
	Severity Severity
	Subject  string // element the finding is about, if any
	Message  string
}

func (f Finding) Error() string {
	if f.Subject == "" {
		return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Code, f.Message)
	}
	return fmt.Sprintf("[%s] %s %s: %s", f.Severity, f.Code, f.Subject, f.Message)
}

// Reporter receives findings.
type Reporter interface {
	Report(f Finding)
}

// Collector accumulates findings in order of arrival.
type Collector struct {
	Findings []Finding
}

// Report implements Reporter.
func (c *Collector) Report(f Finding) {
	c.Findings = append(c.Findings, f)
}

// Errors returns the error-severity findings.
func (c *Collector) Errors() []Finding {
	return c.filter(SeverityError)
}

// Warnings returns the warning-severity findings.
func (c *Collector) Warnings() []Finding {
	return c.filter(SeverityWarning)
}

// Has reports whether any finding carries the given code.
func (c *Collector) Has(code Code) bool {
	for _, f := range c.Findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

// Reset drops all collected findings.
func (c *Collector) Reset() {
	c.Findings = c.Findings[:0]
}

func (c *Collector) filter(s Severity) []Finding {
	var out []Finding
	for _, f := range c.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}
	return out
}

// LogReporter forwards findings to a slog.Logger. A nil Logger uses the
// package logger at report time.
type LogReporter struct {
	Logger *slog.Logger
}

// Report implements Reporter.
func (r LogReporter) Report(f Finding) {
	l := r.Logger
	if l == nil {
		l = Logger()
	}
	level := slog.LevelWarn
	if f.Severity == SeverityError {
		level = slog.LevelError
	}
	l.Log(context.Background(), level, f.Message,
		slog.String("code", string(f.Code)),
		slog.String("subject", f.Subject),
	)
}

type multi []Reporter

func (m multi) Report(f Finding) {
	for _, r := range m {
		r.Report(f)
	}
}

// Multi fans a finding out to several reporters. Nil entries are skipped.
func Multi(rs ...Reporter) Reporter {
	var m multi
	for _, r := range rs {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

// Or returns r, or a LogReporter on the package logger when r is nil.
func Or(r Reporter) Reporter {
	if r == nil {
		return LogReporter{}
	}
	return r
}

// Warn reports a warning-severity finding.
func Warn(r Reporter, code Code, subject, format string, args ...any) Finding {
	f := Finding{Code: code, Severity: SeverityWarning, Subject: subject, Message: fmt.Sprintf(format, args...)}
	Or(r).Report(f)
	return f
}

// Violation reports an error-severity finding.
func Violation(r Reporter, code Code, subject, format string, args ...any) Finding {
	f := Finding{Code: code, Severity: SeverityError, Subject: subject, Message: fmt.Sprintf(format, args...)}
	Or(r).Report(f)
	return f
}
