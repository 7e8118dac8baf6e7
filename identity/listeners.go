package identity

import (
	"sync"

	"github.com/jrsteele09/localchef-bazaar/sessions"
)

// Listeners is a registry of auth state listeners shared by provider implementations
type Listeners struct {
	lock    sync.Mutex
	nextID  int
	entries map[int]StateListener
	order   []int
}

// Add registers fn and returns its removal function
func (l *Listeners) Add(fn StateListener) func() {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.entries == nil {
		l.entries = make(map[int]StateListener)
	}
	l.nextID++
	id := l.nextID
	l.entries[id] = fn
	l.order = append(l.order, id)

	return func() {
		l.lock.Lock()
		defer l.lock.Unlock()
		delete(l.entries, id)
	}
}

// Notify calls every listener in registration order, outside the lock
func (l *Listeners) Notify(principal *sessions.Principal) {
	l.lock.Lock()
	fns := make([]StateListener, 0, len(l.entries))
	live := l.order[:0]
	for _, id := range l.order {
		if fn, ok := l.entries[id]; ok {
			fns = append(fns, fn)
			live = append(live, id)
		}
	}
	l.order = live
	l.lock.Unlock()

	for _, fn := range fns {
		var p *sessions.Principal
		if principal != nil {
			c := *principal
			p = &c
		}
		fn(p)
	}
}
