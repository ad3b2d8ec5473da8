package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// AnomalyKind classifies a ScopeAnomaly.
type AnomalyKind string

const (
	// AnomalyUnknownFormInReading: a reading's re_restr names a written form
	// the entry does not have.
	AnomalyUnknownFormInReading AnomalyKind = "unknown_form_in_reading"
	// AnomalyUnknownFormInSense: a sense's stagk names an absent form.
	AnomalyUnknownFormInSense AnomalyKind = "unknown_form_in_sense"
	// AnomalyUnknownReadingInSense: a sense's stagr names an absent reading.
	AnomalyUnknownReadingInSense AnomalyKind = "unknown_reading_in_sense"
	// AnomalyEmptyScope: a sense resolved to zero records.
	AnomalyEmptyScope AnomalyKind = "empty_scope"
)

// ScopeAnomaly is a non-fatal restriction defect found while resolving one
// entry. The affected restriction contributes nothing; parsing continues.
type ScopeAnomaly struct {
	EntrySeq string
	Kind     AnomalyKind
	Literal  string // offending literal; empty for AnomalyEmptyScope
	Sense    int    // 1-based sense position, 0 when not sense-related
}

func (a ScopeAnomaly) String() string {
	switch {
	case a.Sense > 0 && a.Literal != "":
		return fmt.Sprintf("entry %s sense %d: %s %q", a.EntrySeq, a.Sense, a.Kind, a.Literal)
	case a.Sense > 0:
		return fmt.Sprintf("entry %s sense %d: %s", a.EntrySeq, a.Sense, a.Kind)
	default:
		return fmt.Sprintf("entry %s: %s %q", a.EntrySeq, a.Kind, a.Literal)
	}
}

// DiagnosticsSink receives every ScopeAnomaly raised during parsing.
type DiagnosticsSink interface {
	Report(a ScopeAnomaly)
}

// Discard is a DiagnosticsSink that drops everything.
var Discard DiagnosticsSink = discardSink{}

type discardSink struct{}

func (discardSink) Report(ScopeAnomaly) {}

// Collector accumulates anomalies in memory. Safe for concurrent use.
type Collector struct {
	mu        sync.Mutex
	anomalies []ScopeAnomaly
}

// Report implements DiagnosticsSink.
func (c *Collector) Report(a ScopeAnomaly) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anomalies = append(c.anomalies, a)
}

// Anomalies returns a copy of everything reported so far.
func (c *Collector) Anomalies() []ScopeAnomaly {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ScopeAnomaly, len(c.anomalies))
	copy(out, c.anomalies)
	return out
}

// Len returns the number of anomalies reported so far.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.anomalies)
}

// LogSink writes each anomaly as a warning.
type LogSink struct {
	Log *slog.Logger
}

// Report implements DiagnosticsSink.
func (s LogSink) Report(a ScopeAnomaly) {
	s.Log.LogAttrs(context.Background(), slog.LevelWarn, "scope anomaly",
		slog.String("ent_seq", a.EntrySeq),
		slog.String("kind", string(a.Kind)),
		slog.String("literal", a.Literal),
		slog.Int("sense", a.Sense),
	)
}

// Tee fans every anomaly out to each sink.
func Tee(sinks ...DiagnosticsSink) DiagnosticsSink {
	return teeSink(sinks)
}

type teeSink []DiagnosticsSink

func (t teeSink) Report(a ScopeAnomaly) {
	for _, s := range t {
		s.Report(a)
	}
}
