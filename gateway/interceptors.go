package gateway

import (
	"net/http"
	"sync"
)

// RequestInterceptor runs before a request is sent. Returning an error aborts the send.
type RequestInterceptor func(req *http.Request) error

// ResponseInterceptor runs after a response (or transport failure) and returns
// the error the caller should see. err is an *APIError for non-2xx responses
// and resp is nil when the request never reached the backend.
type ResponseInterceptor func(req *http.Request, resp *http.Response, err error) error

type requestEntry struct {
	id int
	fn RequestInterceptor
}

type responseEntry struct {
	id int
	fn ResponseInterceptor
}

// Interceptors is an ordered registry of request and response hooks.
// Registration returns an id that ejects the hook again.
type Interceptors struct {
	lock     sync.RWMutex
	nextID   int
	request  []requestEntry
	response []responseEntry
}

func (i *Interceptors) UseRequest(fn RequestInterceptor) int {
	i.lock.Lock()
	defer i.lock.Unlock()
	i.nextID++
	i.request = append(i.request, requestEntry{id: i.nextID, fn: fn})
	return i.nextID
}

func (i *Interceptors) UseResponse(fn ResponseInterceptor) int {
	i.lock.Lock()
	defer i.lock.Unlock()
	i.nextID++
	i.response = append(i.response, responseEntry{id: i.nextID, fn: fn})
	return i.nextID
}

// EjectRequest removes a request interceptor. It returns false for unknown ids.
func (i *Interceptors) EjectRequest(id int) bool {
	i.lock.Lock()
	defer i.lock.Unlock()
	before := len(i.request)
	i.request = removeEntry(i.request, func(e requestEntry) bool { return e.id == id })
	return len(i.request) < before
}

// EjectResponse removes a response interceptor. It returns false for unknown ids.
func (i *Interceptors) EjectResponse(id int) bool {
	i.lock.Lock()
	defer i.lock.Unlock()
	before := len(i.response)
	i.response = removeEntry(i.response, func(e responseEntry) bool { return e.id == id })
	return len(i.response) < before
}

// swap ejects a request/response pair and registers a new one under a single
// lock, so a concurrent send sees either the old pair or the new one.
func (i *Interceptors) swap(reqID, respID int, req RequestInterceptor, resp ResponseInterceptor) (int, int) {
	i.lock.Lock()
	defer i.lock.Unlock()

	i.request = removeEntry(i.request, func(e requestEntry) bool { return e.id == reqID })
	i.response = removeEntry(i.response, func(e responseEntry) bool { return e.id == respID })

	i.nextID++
	i.request = append(i.request, requestEntry{id: i.nextID, fn: req})
	i.nextID++
	i.response = append(i.response, responseEntry{id: i.nextID, fn: resp})
	return i.nextID - 1, i.nextID
}

func removeEntry[T any](entries []T, match func(T) bool) []T {
	for n, e := range entries {
		if match(e) {
			return append(entries[:n:n], entries[n+1:]...)
		}
	}
	return entries
}

// Count returns the number of registered request and response interceptors
func (i *Interceptors) Count() (request, response int) {
	i.lock.RLock()
	defer i.lock.RUnlock()
	return len(i.request), len(i.response)
}

// snapshot copies the hooks for one send. Changes made while the request is in
// flight apply to the next request only.
func (i *Interceptors) snapshot() ([]RequestInterceptor, []ResponseInterceptor) {
	i.lock.RLock()
	defer i.lock.RUnlock()

	reqs := make([]RequestInterceptor, len(i.request))
	for n, e := range i.request {
		reqs[n] = e.fn
	}
	resps := make([]ResponseInterceptor, len(i.response))
	for n, e := range i.response {
		resps[n] = e.fn
	}
	return reqs, resps
}
