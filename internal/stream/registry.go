package stream

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks which sessions are subscribed to which topic.
type Registry struct {
	mu sync.RWMutex

	data map[string]map[uuid.UUID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		data: make(map[string]map[uuid.UUID]struct{}),
	}
}

func (r *Registry) Add(topic string, sessions ...uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.data[topic]
	if !ok {
		data = make(map[uuid.UUID]struct{})
	}

	for _, id := range sessions {
		data[id] = struct{}{}
	}

	r.data[topic] = data
}

func (r *Registry) Get(topic string) ([]uuid.UUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.data[topic]
	if !ok {
		return []uuid.UUID{}, false
	}

	res := make([]uuid.UUID, len(data))
	idx := 0
	for id := range data {
		res[idx] = id
		idx++
	}

	return res, true
}

func (r *Registry) Remove(topic string, session uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.data[topic]
	if !ok {
		return
	}

	delete(data, session)
	if len(data) == 0 {
		delete(r.data, topic)
	}
}

func (r *Registry) RemoveTopic(topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.data, topic)
}
