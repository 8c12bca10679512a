// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package scheduler implements the discrete-event turn queue.
//
// Metrics stored in the heap are relative: each is the number of time units
// until that id is due, counted from the scheduler's current time. Popping a
// node advances time by its metric and shifts every remaining metric down by
// the same amount.
//
// A reserved tick sentinel is always scheduled. It repeats every default
// duration and is never returned to callers; listeners registered with
// OnTick observe it instead.
package scheduler

import (
	"log/slog"
	"slices"

	"github.com/samber/oops"

	"github.com/holomush/turnsim/internal/pqueue"
)

// Tick is the reserved id of the tick sentinel.
const Tick = "__tick__"

// DefaultDuration is the duration used when an actor's rule did not set one.
const DefaultDuration = 1

// DefaultDelay is the conventional initial delay for Add.
const DefaultDelay = 1

// Entry is a scheduled id with its relative metric.
type Entry = pqueue.Node[string, int]

// TickFunc observes the tick sentinel. It receives the time after the tick.
type TickFunc func(time int)

// Scheduler is a discrete-event turn queue. It is not safe for concurrent use.
type Scheduler struct {
	time        int
	insertionID int
	current     string
	duration    int
	repeat      map[string]struct{}
	heap        *pqueue.Heap[string, int]
	onTick      []TickFunc
}

// New creates a scheduler holding only the tick sentinel.
func New() *Scheduler {
	s := &Scheduler{
		duration: DefaultDuration,
		repeat:   map[string]struct{}{Tick: {}},
		heap:     pqueue.New(lessEntry),
	}
	s.heap.Push(Entry{Data: Tick, Metric: DefaultDuration, InsertionID: 0})
	return s
}

func lessEntry(a, b *Entry) bool {
	if a.Metric != b.Metric {
		return a.Metric < b.Metric
	}
	return a.InsertionID < b.InsertionID
}

// OnTick registers a listener for the tick sentinel.
func (s *Scheduler) OnTick(fn TickFunc) {
	s.onTick = append(s.onTick, fn)
}

// Time returns the current simulated time.
func (s *Scheduler) Time() int {
	return s.time
}

// Current returns the id whose turn is in progress.
func (s *Scheduler) Current() (string, bool) {
	return s.current, s.current != ""
}

// Duration returns the duration that will be used to reschedule the current
// id if it repeats.
func (s *Scheduler) Duration() int {
	return s.duration
}

// Len returns the number of scheduled ids, excluding the tick sentinel and
// the current id.
func (s *Scheduler) Len() int {
	return s.heap.Len() - 1
}

// IsRepeating reports whether id is rescheduled automatically after each turn.
func (s *Scheduler) IsRepeating(id string) bool {
	_, ok := s.repeat[id]
	return ok && id != Tick
}

// Add schedules id to act after delay time units. Repeating ids are
// rescheduled automatically every time their turn ends.
//
// Add ignores the tick sentinel and the empty id. A negative delay is treated
// as zero. Adding an id that is already scheduled creates a duplicate entry;
// callers must not do that.
func (s *Scheduler) Add(id string, repeat bool, delay int) {
	if id == Tick || id == "" {
		slog.Debug("scheduler ignored reserved id", "id", id)
		return
	}
	if delay < 0 {
		delay = 0
	}
	s.insertionID++
	s.heap.Push(Entry{Data: id, Metric: delay, InsertionID: s.insertionID})
	if repeat {
		s.repeat[id] = struct{}{}
	}
}

// Remove unschedules id and reports whether it had a pending heap entry.
// Removing the current id ends its turn without rescheduling it.
// The tick sentinel cannot be removed.
func (s *Scheduler) Remove(id string) bool {
	if id == Tick || id == "" {
		return false
	}
	if id == s.current {
		s.current = ""
		s.duration = DefaultDuration
	}
	delete(s.repeat, id)
	return s.heap.Remove(func(e Entry) bool { return e.Data == id })
}

// SetDuration sets how long the current turn occupies its actor. It has no
// effect outside a turn. Values below one become DefaultDuration.
func (s *Scheduler) SetDuration(n int) {
	if s.current == "" {
		return
	}
	if n <= 0 {
		n = DefaultDuration
	}
	s.duration = n
}

// TimeUntil returns the number of time units until id is due.
func (s *Scheduler) TimeUntil(id string) (int, bool) {
	e, ok := s.heap.Find(func(e Entry) bool { return e.Data == id })
	if !ok {
		return 0, false
	}
	return e.Metric, true
}

// Next ends the current turn and returns the id whose turn starts now.
// It returns false when nothing but the tick sentinel remains scheduled.
// Tick listeners run synchronously while Next advances past the sentinel.
func (s *Scheduler) Next() (string, bool) {
	for {
		s.finishTurn()

		if s.heap.Len() <= 1 {
			return "", false
		}

		e := s.getNext()
		s.current = e.Data
		if e.Data != Tick {
			turnsTotal.WithLabelValues(turnKindActor).Inc()
			return e.Data, true
		}

		turnsTotal.WithLabelValues(turnKindTick).Inc()
		for _, fn := range s.onTick {
			fn(s.time)
		}
	}
}

// finishTurn reschedules the current id if it repeats and clears the turn.
func (s *Scheduler) finishTurn() {
	if s.current == "" {
		return
	}
	if _, ok := s.repeat[s.current]; ok {
		id := 0
		if s.current != Tick {
			s.insertionID++
			id = s.insertionID
		}
		s.heap.Push(Entry{Data: s.current, Metric: s.duration, InsertionID: id})
	}
	s.current = ""
	s.duration = DefaultDuration
}

// getNext pops the minimal entry and advances time by its metric.
func (s *Scheduler) getNext() Entry {
	e, ok := s.heap.Pop()
	if !ok {
		panic(oops.Code(CodeHeapCorrupt).Errorf("scheduler heap is empty"))
	}
	if e.Metric < 0 {
		panic(oops.Code(CodeHeapCorrupt).
			With("id", e.Data).
			With("metric", e.Metric).
			Errorf("scheduler entry is due in the past"))
	}
	if e.Metric > 0 {
		s.time += e.Metric
		s.heap.Each(func(n *Entry) { n.Metric -= e.Metric })
	}
	return e
}

// Snapshot is the plain-data form of a scheduler.
type Snapshot struct {
	Time        int      `json:"time" jsonschema:"minimum=0"`
	InsertionID int      `json:"insertion_id" jsonschema:"minimum=0"`
	Current     string   `json:"current,omitempty"`
	Duration    int      `json:"duration" jsonschema:"minimum=1"`
	Repeat      []string `json:"repeat"`
	Heap        []Entry  `json:"heap" jsonschema:"minItems=1"`
}

// State captures the scheduler. Repeat ids are sorted.
func (s *Scheduler) State() Snapshot {
	repeat := make([]string, 0, len(s.repeat))
	for id := range s.repeat {
		repeat = append(repeat, id)
	}
	slices.Sort(repeat)
	return Snapshot{
		Time:        s.time,
		InsertionID: s.insertionID,
		Current:     s.current,
		Duration:    s.duration,
		Repeat:      repeat,
		Heap:        s.heap.State(),
	}
}

// Load replaces the scheduler state with snap. A turn that was in progress
// when snap was taken is rescheduled as immediately due, so the next call to
// Next returns that id again. Tick listeners are kept.
//
// Load panics if snap has no tick sentinel; only snapshots produced by State
// may be loaded.
func (s *Scheduler) Load(snap Snapshot) {
	tick := slices.IndexFunc(snap.Heap, func(e Entry) bool { return e.Data == Tick })
	if tick < 0 && snap.Current != Tick {
		panic(oops.Code(CodeMissingTick).
			With("time", snap.Time).
			With("entries", len(snap.Heap)).
			Errorf("scheduler snapshot has no tick sentinel"))
	}

	s.time = snap.Time
	s.insertionID = snap.InsertionID
	s.current = ""
	s.duration = DefaultDuration
	s.repeat = make(map[string]struct{}, len(snap.Repeat)+1)
	for _, id := range snap.Repeat {
		s.repeat[id] = struct{}{}
	}
	s.repeat[Tick] = struct{}{}
	s.heap.Restore(snap.Heap)
	if snap.Current != "" {
		s.heap.Push(Entry{Data: snap.Current, Metric: 0, InsertionID: 0})
	}
}
