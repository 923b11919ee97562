package local

import (
	"sync"

	"github.com/sprakpolisen/dedem/lib/cache"
)

func New() Client {
	return &local{
		store: make(map[string]*cache.Lookup),
		mut:   &sync.RWMutex{},
	}
}

type Client interface {
	cache.Client
	Delete(key string)
	Len() int
}

type local struct {
	store map[string]*cache.Lookup
	mut   *sync.RWMutex
}

func (l *local) Get(key string) (*cache.Lookup, error) {
	l.mut.RLock()
	defer l.mut.RUnlock()

	lookup, ok := l.store[key]
	if !ok {
		return nil, nil
	}

	return lookup, nil
}

func (l *local) Set(key string, lookup *cache.Lookup) error {
	l.mut.Lock()
	defer l.mut.Unlock()

	l.store[key] = lookup
	return nil
}

func (l *local) Delete(key string) {
	l.mut.Lock()
	defer l.mut.Unlock()

	delete(l.store, key)
}

func (l *local) Len() int {
	l.mut.RLock()
	defer l.mut.RUnlock()

	return len(l.store)
}
