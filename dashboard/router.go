package dashboard

import (
	"sync"

	"github.com/jrsteele09/localchef-bazaar/gateway"
)

var _ gateway.Navigator = (*Router)(nil)

// Router keeps the location history of a client session
type Router struct {
	lock     sync.Mutex
	history  []string
	onChange func(route string)
}

type RouterOption func(*Router)

// WithOnNavigate calls fn after every navigation
func WithOnNavigate(fn func(route string)) RouterOption {
	return func(r *Router) {
		r.onChange = fn
	}
}

func NewRouter(start string, opts ...RouterOption) *Router {
	r := &Router{history: []string{start}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) Navigate(route string) {
	r.lock.Lock()
	r.history = append(r.history, route)
	fn := r.onChange
	r.lock.Unlock()

	if fn != nil {
		fn(route)
	}
}

// Back returns to the previous location. The first location is never popped.
func (r *Router) Back() string {
	r.lock.Lock()
	defer r.lock.Unlock()
	if len(r.history) > 1 {
		r.history = r.history[:len(r.history)-1]
	}
	return r.history[len(r.history)-1]
}

func (r *Router) Location() string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.history[len(r.history)-1]
}

func (r *Router) History() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.history...)
}
