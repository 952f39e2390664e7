package classifier

import "sync"

// MemoryPublisher records published events, keeping at most the last limit
// (0 keeps everything). Used by tests and for in-process inspection.
type MemoryPublisher struct {
	mu     sync.Mutex
	limit  int
	events []Event
}

// NewMemoryPublisher returns an unbounded MemoryPublisher.
func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

// NewRecentPublisher keeps only the newest limit events.
func NewRecentPublisher(limit int) *MemoryPublisher { return &MemoryPublisher{limit: limit} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	if p.limit > 0 && len(p.events) > p.limit {
		p.events = append(p.events[:0], p.events[len(p.events)-p.limit:]...)
	}
}

// Events returns a copy of the retained events, oldest first.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

// Named returns the retained events called name.
func (p *MemoryPublisher) Named(name string) []Event {
	var out []Event
	for _, e := range p.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
