package event

import "sync"

// Handler consumes events routed to the global sink.
type Handler func(Event)

var (
	sinkMu sync.RWMutex
	sink   Handler
)

// SetHandler installs fn as the process-wide event sink, replacing any
// previous handler (last registration wins). While a sink is active it is
// the sole consumer of cost_update events: the cost tracker routes usage to
// it instead of emitting into per-request streams, so each usage record is
// reported exactly once. Pass nil to tear the sink down.
func SetHandler(fn Handler) {
	sinkMu.Lock()
	sink = fn
	sinkMu.Unlock()
}

// HandlerActive reports whether a global sink is registered.
func HandlerActive() bool {
	sinkMu.RLock()
	defer sinkMu.RUnlock()
	return sink != nil
}

// Publish delivers the event to the global sink. It returns false, leaving
// the event undelivered, when no sink is registered.
func Publish(e Event) bool {
	sinkMu.RLock()
	fn := sink
	sinkMu.RUnlock()
	if fn == nil {
		return false
	}
	fn(e)
	return true
}
