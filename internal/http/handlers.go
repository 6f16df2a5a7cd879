package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/althash-leandro/altmask/internal/bus"
	"github.com/althash-leandro/altmask/internal/messages"
)

type Requester interface {
	Request(ctx context.Context, req messages.Request) (any, error)
}

type Subscriber interface {
	Subscribe(ch chan<- messages.Event) event.Subscription
}

type Handler struct {
	requests Requester
	events   Subscriber
}

func NewHandler(requests Requester, events Subscriber) *Handler {
	return &Handler{requests: requests, events: events}
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Type     messages.Type `json:"type"`
	Response any           `json:"response"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// PostMessage dispatches one request. Request/response types carry the answer;
// the rest answer with a null response once handled and report through /events.
func (h *Handler) PostMessage(c *gin.Context) {
	var req messages.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: HTTPErrorInvalidJSONText})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	resp, err := h.requests.Request(ctx, req)
	switch {
	case errors.Is(err, bus.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: HTTPErrorUnavailableText})
		return
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, errorResponse{Error: HTTPErrorTimeoutText})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, messageResponse{Type: req.Type, Response: resp})
}

// Events streams every broadcast as server-sent events until the client goes away.
// A client that cannot keep up loses events rather than stalling the broadcaster.
func (h *Handler) Events(c *gin.Context) {
	id := uuid.NewString()
	in := make(chan messages.Event, 16)
	out := make(chan messages.Event, eventBuffer)
	sub := h.events.Subscribe(in)
	done := make(chan struct{})
	defer func() {
		sub.Unsubscribe()
		close(done)
	}()

	go func() {
		for {
			select {
			case ev := <-in:
				select {
				case out <- ev:
				default:
					log.Warn("http: dropping event for slow client", "client", id, "type", ev.Type)
				}
			case <-done:
				return
			}
		}
	}()

	log.Info("http: event stream opened", "client", id)
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-out:
			c.SSEvent(sseEventName, ev)
			return true
		case err := <-sub.Err():
			if err != nil {
				log.Warn("http: event subscription ended", "client", id, "error", err)
			}
			return false
		case <-c.Request.Context().Done():
			return false
		}
	})
	log.Info("http: event stream closed", "client", id)
}
