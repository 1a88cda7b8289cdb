package engine

import (
	"sort"

	"github.com/Niftys/dawduction"
)

// lookaheadSeconds is how far ahead of the transport clock events are
// resolved into output samples. Large enough to absorb callback jitter,
// small enough that live edits feel immediate.
const lookaheadSeconds = 0.15

type (
	// Scheduler buckets note events by the exact output sample at which they
	// fire. It is owned by the render thread: the table is populated by
	// lookahead passes, drained as the clock advances, and rebuilt from
	// scratch at every loop wrap, which is where live pattern edits take
	// effect without a glitch.
	Scheduler struct {
		sampleRate int
		table      map[int64][]dawduction.NoteEvent
		seen       map[eventKey]struct{}
	}

	// eventKey identifies an event for deduplication, so repeated lookahead
	// passes over the same window insert each event once.
	eventKey struct {
		instrumentID string
		beat         float64
		pitch        int
	}
)

func NewScheduler(sampleRate int) *Scheduler {
	return &Scheduler{
		sampleRate: sampleRate,
		table:      make(map[int64][]dawduction.NoteEvent),
		seen:       make(map[eventKey]struct{}),
	}
}

// Schedule resolves events against the current loop and inserts the ones
// whose firing sample falls inside the lookahead window starting at now.
// now is an absolute output sample index; it never rewinds except through
// Clear. In pattern mode stored beats wrap modulo the loop length; in
// timeline mode they are absolute within the loop. Events of the next loop
// iteration are pulled in when the window crosses the loop edge. Events
// resolving outside the window are dropped and re-evaluated on a later pass.
func (s *Scheduler) Schedule(events []dawduction.NoteEvent, now int64, spb float64, loopLength float64, mode dawduction.ViewMode) {
	if loopLength <= 0 {
		loopLength = dawduction.DefaultPatternLength
	}
	window := int64(lookaheadSeconds * float64(s.sampleRate))
	loopSamples := int64(loopLength * spb)
	if loopSamples <= 0 {
		return
	}
	loopBase := (now / loopSamples) * loopSamples
	for _, ev := range events {
		beat := ev.Time
		if mode == dawduction.PatternMode {
			beat = wrapBeat(beat, loopLength)
		}
		at := loopBase + int64(beat*spb)
		if at < now {
			// Already behind the clock in this loop; it belongs to the next
			// iteration.
			at += loopSamples
		}
		if at >= now+window {
			continue
		}
		key := eventKey{instrumentID: ev.InstrumentID, beat: ev.Time, pitch: ev.Pitch}
		if _, ok := s.seen[key]; ok {
			continue
		}
		s.seen[key] = struct{}{}
		s.table[at] = append(s.table[at], ev)
	}
}

// Drain removes and returns all events firing in [from, to), grouped by
// sample and ordered by firing time.
func (s *Scheduler) Drain(from, to int64) []FiredBucket {
	var buckets []FiredBucket
	for at, events := range s.table {
		if at >= from && at < to {
			buckets = append(buckets, FiredBucket{At: at, Events: events})
			delete(s.table, at)
		}
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].At < buckets[j].At })
	return buckets
}

// NextFiring returns the earliest scheduled sample at or after from, or
// ok=false when nothing is pending.
func (s *Scheduler) NextFiring(from int64) (at int64, ok bool) {
	for t := range s.table {
		if t >= from && (!ok || t < at) {
			at, ok = t, true
		}
	}
	return at, ok
}

// Clear wipes the table and the dedup set. Called on loop wrap, transport
// stop and project edits, after which the next Schedule pass rebuilds the
// window from the edited data.
func (s *Scheduler) Clear() {
	for k := range s.table {
		delete(s.table, k)
	}
	for k := range s.seen {
		delete(s.seen, k)
	}
}

// Pending returns the number of scheduled, not yet drained, firing samples.
func (s *Scheduler) Pending() int {
	return len(s.table)
}

// FiredBucket is the set of events firing at one output sample.
type FiredBucket struct {
	At     int64
	Events []dawduction.NoteEvent
}

func wrapBeat(beat, length float64) float64 {
	beat -= float64(int64(beat/length)) * length
	if beat < 0 {
		beat += length
	}
	return beat
}
