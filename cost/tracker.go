// Package cost converts raw usage numbers into cost, accumulates running
// totals, and is the single point that emits cost_update events.
//
// When a global event handler is registered via event.SetHandler, the
// tracker routes cost events to it instead of the per-request stream, so
// the same usage is never reported twice. Registering a sink changes the
// route of a cost event, never its count.
package cost

import (
	"sync"

	ai "github.com/mwhitford/manifold"
	"github.com/mwhitford/manifold/event"
	"github.com/mwhitford/manifold/model"
)

// Totals aggregates usage across requests.
type Totals struct {
	Requests     int
	InputTokens  int
	OutputTokens int
	CachedTokens int
	Images       int
	Cost         float64
}

func (t *Totals) add(u ai.ModelUsage) {
	t.Requests++
	t.InputTokens += u.InputTokens
	t.OutputTokens += u.OutputTokens
	t.CachedTokens += u.CachedTokens
	t.Images += u.ImageCount
	t.Cost += u.Cost
}

// Tracker accumulates usage per model and overall. Updates are small
// critical sections guarded by a single mutex, safe for concurrent
// requests sharing one process.
type Tracker struct {
	mu      sync.Mutex
	overall Totals
	byModel map[string]*Totals
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{byModel: make(map[string]*Totals)}
}

// Default is the process-wide tracker used by the client package.
var Default = NewTracker()

// AddUsage prices the usage against the model tables, accumulates it into
// the running totals, and returns the enriched record. A cost already set
// on the record is trusted and not recomputed. Deterministic given the same
// price table and inputs.
func (t *Tracker) AddUsage(u ai.ModelUsage) ai.ModelUsage {
	if u.Cost == 0 {
		u.Cost = price(u)
	}

	t.mu.Lock()
	t.overall.add(u)
	mt, ok := t.byModel[u.Model]
	if !ok {
		mt = &Totals{}
		t.byModel[u.Model] = mt
	}
	mt.add(u)
	t.mu.Unlock()

	return u
}

// AddEstimatedUsage derives token counts from text lengths for providers
// that never report usage. The heuristic (~4 characters per token) is
// approximate, not an exact tokenization; records are tagged
// "estimated":"true" so consumers can tell them apart.
func (t *Tracker) AddEstimatedUsage(modelID, inputText, outputText string, meta map[string]string) ai.ModelUsage {
	u := ai.ModelUsage{
		Model:        modelID,
		InputTokens:  EstimateTokens(inputText),
		OutputTokens: EstimateTokens(outputText),
		Modality:     ai.ModalityText,
		Metadata:     map[string]string{"estimated": "true"},
	}
	for k, v := range meta {
		u.Metadata[k] = v
	}
	return t.AddUsage(u)
}

// Totals returns a copy of the overall running totals.
func (t *Tracker) Totals() Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.overall
}

// ModelTotals returns a copy of the totals accumulated for one model.
func (t *Tracker) ModelTotals(modelID string) Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	if mt, ok := t.byModel[modelID]; ok {
		return *mt
	}
	return Totals{}
}

// Reset clears all accumulated totals.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.overall = Totals{}
	t.byModel = make(map[string]*Totals)
	t.mu.Unlock()
}

// Report prices and accumulates the usage, then emits exactly one
// cost_update event for it: to the global sink when one is registered,
// otherwise into the request stream ch. Returns the enriched record.
func (t *Tracker) Report(ch chan<- event.Event, u ai.ModelUsage) ai.ModelUsage {
	u = t.AddUsage(u)
	ev := event.Event{Type: event.CostUpdate, Usage: &u}
	if event.Publish(ev) {
		return u
	}
	if ch != nil {
		event.Emit(ch, ev)
	}
	return u
}

// EstimateTokens approximates the token count of text by length.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := (len(text) + 3) / 4
	if n < 1 {
		n = 1
	}
	return n
}

func price(u ai.ModelUsage) float64 {
	info, ok := model.Lookup(u.Model)
	if !ok {
		return 0
	}
	switch info.Kind {
	case model.KindChat:
		return info.Chat.Cost(u.InputTokens, u.OutputTokens, u.CachedTokens)
	case model.KindEmbedding:
		return info.Embedding.Cost(u.InputTokens)
	case model.KindImage:
		return info.Image.Cost(u.ImageCount)
	default:
		return 0
	}
}
