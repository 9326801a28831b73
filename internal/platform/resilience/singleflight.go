package resilience

import "sync"

// SingleFlight collapses concurrent lookups of one key into a single
// upstream call; late arrivals block until the first caller finishes
// and share its result.
type SingleFlight struct {
	mu      sync.Mutex
	pending map[string]*flightResult
}

type flightResult struct {
	done chan struct{}
	val  any
	err  error
}

// Do runs fn for key unless a call for the same key is already in
// flight. The third return value reports whether the result was shared
// from another caller.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.pending == nil {
		g.pending = make(map[string]*flightResult)
	}

	if r, ok := g.pending[key]; ok {
		g.mu.Unlock()
		<-r.done
		return r.val, r.err, true
	}

	r := &flightResult{done: make(chan struct{})}
	g.pending[key] = r
	g.mu.Unlock()

	r.val, r.err = fn()

	g.mu.Lock()
	delete(g.pending, key)
	g.mu.Unlock()
	close(r.done)

	return r.val, r.err, false
}
