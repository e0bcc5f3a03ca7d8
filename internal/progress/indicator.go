// Package progress reports progress of bulk operations.
//
// Purpose:
//
//	Bulk commands issue one request per row or per user. Once a run has been
//	going for longer than the threshold, each step prints a progress line to
//	stderr: a carriage-return line for terminals or a JSON event for CI logs.
package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// DefaultThreshold is how long a bulk run must take before progress shows.
const DefaultThreshold = 2 * time.Second

// Indicator writes progress lines.
type Indicator struct {
	writer    io.Writer
	threshold time.Duration
	format    string // table, csv or json
	enabled   bool
	shown     bool
	now       func() time.Time
}

// NewIndicator creates an indicator writing to w. A nil writer disables it.
func NewIndicator(w io.Writer, format string) *Indicator {
	return &Indicator{
		writer:    w,
		threshold: DefaultThreshold,
		format:    format,
		enabled:   w != nil,
		now:       time.Now,
	}
}

// WithThreshold changes the minimum elapsed time before progress shows.
func (p *Indicator) WithThreshold(d time.Duration) *Indicator {
	p.threshold = d
	return p
}

// Disable turns the indicator off, e.g. for --quiet.
func (p *Indicator) Disable() *Indicator {
	p.enabled = false
	return p
}

// Event is the JSON form of a progress line.
type Event struct {
	Timestamp       string  `json:"timestamp"`
	Operation       string  `json:"operation"`
	PercentComplete float64 `json:"percent_complete"`
	ItemsProcessed  int     `json:"items_processed"`
	TotalItems      int     `json:"total_items"`
	Failed          int     `json:"failed,omitempty"`
	Elapsed         string  `json:"elapsed"`
	Remaining       string  `json:"remaining,omitempty"`
}

// ShouldShow reports whether a run that has taken elapsed should show progress.
func (p *Indicator) ShouldShow(elapsed time.Duration) bool {
	return p.enabled && elapsed >= p.threshold
}

// Update reports processed of total items done.
func (p *Indicator) Update(op string, processed, failed, total int, elapsed time.Duration) error {
	if total == 0 || !p.ShouldShow(elapsed) {
		return nil
	}
	p.shown = true

	percent := float64(processed) / float64(total) * 100
	remaining := time.Duration(0)
	if processed > 0 {
		remaining = elapsed / time.Duration(processed) * time.Duration(total-processed)
	}

	if p.format == "json" {
		return p.emit(Event{
			Timestamp:       p.now().UTC().Format(time.RFC3339),
			Operation:       op,
			PercentComplete: percent,
			ItemsProcessed:  processed,
			TotalItems:      total,
			Failed:          failed,
			Elapsed:         elapsed.Round(time.Millisecond).String(),
			Remaining:       remaining.Round(time.Millisecond).String(),
		})
	}

	_, err := fmt.Fprintf(p.writer, "\r%s: %.1f%% (%d/%d, %d failed) [elapsed: %s, remaining: %s]",
		op, percent, processed, total, failed, elapsed.Round(time.Second), remaining.Round(time.Second))
	return err
}

// Complete finishes the progress line. Nothing is written if no update was shown.
func (p *Indicator) Complete(op string, failed, total int, elapsed time.Duration) error {
	if !p.enabled || !p.shown {
		return nil
	}

	if p.format == "json" {
		return p.emit(Event{
			Timestamp:       p.now().UTC().Format(time.RFC3339),
			Operation:       op,
			PercentComplete: 100,
			ItemsProcessed:  total,
			TotalItems:      total,
			Failed:          failed,
			Elapsed:         elapsed.Round(time.Millisecond).String(),
			Remaining:       "0s",
		})
	}

	_, err := fmt.Fprintf(p.writer, "\r%s: 100.0%% (%d/%d, %d failed) [completed in %s]\n",
		op, total, total, failed, elapsed.Round(time.Second))
	return err
}

func (p *Indicator) emit(event Event) error {
	return json.NewEncoder(p.writer).Encode(event)
}

// Tracker counts the steps of one bulk run and feeds an Indicator.
type Tracker struct {
	indicator *Indicator
	op        string
	total     int
	processed int
	failed    int
	start     time.Time
}

// Start begins tracking a run of total items.
func (p *Indicator) Start(op string, total int) *Tracker {
	return &Tracker{
		indicator: p,
		op:        op,
		total:     total,
		start:     p.now(),
	}
}

// Step records one processed item.
func (t *Tracker) Step(ok bool) {
	t.processed++
	if !ok {
		t.failed++
	}
	_ = t.indicator.Update(t.op, t.processed, t.failed, t.total, t.Elapsed())
}

// Done closes the progress line.
func (t *Tracker) Done() {
	_ = t.indicator.Complete(t.op, t.failed, t.total, t.Elapsed())
}

// Elapsed is the time since Start.
func (t *Tracker) Elapsed() time.Duration {
	return t.indicator.now().Sub(t.start)
}

// Total is the number of items the run started with.
func (t *Tracker) Total() int { return t.total }

// Processed is the number of items stepped so far.
func (t *Tracker) Processed() int { return t.processed }

// Failed is the number of items stepped with ok=false.
func (t *Tracker) Failed() int { return t.failed }
