// Package diagnostics carries non-fatal findings produced while extracting
// and assembling episodes. Flags never abort processing; they are collected
// per episode, logged, and persisted for later audit.
package diagnostics

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
)

// Kind identifies the category of a flag
type Kind string

const (
	MalformedTimestamp  Kind = "malformed_timestamp"
	AmbiguousNameMatch  Kind = "ambiguous_name_match"
	MissingDuration     Kind = "missing_duration"
	OutOfOrderTopics    Kind = "out_of_order_topics"
	DurationMismatch    Kind = "duration_mismatch"
	TopicBeyondDuration Kind = "topic_beyond_duration"
	MarkerOrderReversed Kind = "marker_order_reversed"
	PartLayoutChanged   Kind = "part_layout_changed"
	UnparsableDate      Kind = "unparsable_date"
)

// Flag is one diagnostic record
type Flag struct {
	Kind    Kind              `json:"kind"`
	Episode string            `json:"episode,omitempty"`
	Part    string            `json:"part,omitempty"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// String renders the flag on one line
func (f Flag) String() string {
	var b strings.Builder
	b.WriteString(string(f.Kind))
	if f.Episode != "" {
		b.WriteString(" episode=" + f.Episode)
	}
	if f.Part != "" {
		b.WriteString(" part=" + f.Part)
	}
	b.WriteString(": " + f.Message)
	if len(f.Details) > 0 {
		keys := make([]string, 0, len(f.Details))
		for k := range f.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%q", k, f.Details[k])
		}
	}
	return b.String()
}

// Sink receives flags
type Sink interface {
	Flag(f Flag)
}

// Discard drops every flag
var Discard Sink = discard{}

type discard struct{}

func (discard) Flag(Flag) {}

// Collector accumulates flags in memory. Safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	flags []Flag
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

// Flag implements Sink
func (c *Collector) Flag(f Flag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags = append(c.flags, f)
}

// Flags returns a copy of the collected flags
func (c *Collector) Flags() []Flag {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Flag, len(c.flags))
	copy(out, c.flags)
	return out
}

// Count returns how many flags of the given kind were collected
func (c *Collector) Count(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, f := range c.flags {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// LogSink writes every flag through the standard logger
type LogSink struct{}

// Flag implements Sink
func (LogSink) Flag(f Flag) {
	log.Printf("[FLAG] %s", f)
}

// Tee forwards flags to several sinks
func Tee(sinks ...Sink) Sink {
	return tee(sinks)
}

type tee []Sink

func (t tee) Flag(f Flag) {
	for _, s := range t {
		if s != nil {
			s.Flag(f)
		}
	}
}

// WithEpisode returns a sink that stamps the episode (and part, when set)
// onto flags that do not carry one.
func WithEpisode(sink Sink, episode, part string) Sink {
	return scoped{sink: sink, episode: episode, part: part}
}

type scoped struct {
	sink    Sink
	episode string
	part    string
}

func (s scoped) Flag(f Flag) {
	if f.Episode == "" {
		f.Episode = s.episode
	}
	if f.Part == "" {
		f.Part = s.part
	}
	s.sink.Flag(f)
}
