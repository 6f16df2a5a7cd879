// Package router is the single entry point for UI requests. It dispatches each request
// to the controller that registered its type, on the loop.
package router

import (
	"context"
	"sync"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/althash-leandro/altmask/internal/bus"
	"github.com/althash-leandro/altmask/internal/messages"
)

// Handler handles one request. respond may be called later, from another loop turn;
// only the first call counts.
type Handler interface {
	Handle(req messages.Request, respond func(any)) error
}

type HandlerFunc func(req messages.Request, respond func(any)) error

func (f HandlerFunc) Handle(req messages.Request, respond func(any)) error { return f(req, respond) }

// Sync adapts a handler that answers in the same turn.
func Sync(fn func(messages.Request) (any, error)) HandlerFunc {
	return func(req messages.Request, respond func(any)) error {
		v, err := fn(req)
		if err != nil {
			return err
		}
		if req.Type.ExpectsResponse() {
			respond(v)
		}
		return nil
	}
}

type Router struct {
	loop     *bus.Loop
	handlers map[messages.Type]Handler
}

func New(loop *bus.Loop) *Router {
	return &Router{loop: loop, handlers: map[messages.Type]Handler{}}
}

// Register routes types to h. A later registration for a type replaces the earlier one.
func (r *Router) Register(h Handler, types ...messages.Type) {
	for _, t := range types {
		r.handlers[t] = h
	}
}

// Dispatch runs the handler for req. It must be called on the loop. Unknown types are ignored.
func (r *Router) Dispatch(req messages.Request, respond func(any)) {
	h, ok := r.handlers[req.Type]
	if !ok {
		return
	}
	if respond == nil || !req.Type.ExpectsResponse() {
		respond = func(any) {}
	}
	reply := once(respond)
	if err := h.Handle(req, reply); err != nil {
		log.Warn("router: request failed", "type", req.Type, "error", err)
		reply(nil)
	}
}

// Request posts req to the loop. For request/response types it waits for the answer;
// for everything else it returns once the handler has run.
func (r *Router) Request(ctx context.Context, req messages.Request) (any, error) {
	reply := make(chan any, 1)
	handled := make(chan struct{})
	known := false

	if !r.loop.Post(func() {
		defer close(handled)
		_, known = r.handlers[req.Type]
		r.Dispatch(req, func(v any) { reply <- v })
	}) {
		return nil, bus.ErrClosed
	}

	select {
	case <-handled:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if !known || !req.Type.ExpectsResponse() {
		return nil, nil
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func once(fn func(any)) func(any) {
	var o sync.Once
	return func(v any) { o.Do(func() { fn(v) }) }
}
