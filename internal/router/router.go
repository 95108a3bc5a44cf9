// Package router is the single entry point for typed frontend
// requests. Dispatch is a pure lookup from message type to handler;
// error containment lives here so no handler failure ever leaves a
// caller without a response.
package router

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MrSnakeDoc/revisit/internal/domain"
	"github.com/MrSnakeDoc/revisit/internal/logger"
)

// HandlerFunc processes one request payload and returns response data.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) (any, error)

type Router struct {
	handlers map[domain.MessageType]HandlerFunc
	logger   logger.Logger
}

func New(log logger.Logger) *Router {
	return &Router{
		handlers: make(map[domain.MessageType]HandlerFunc),
		logger:   log,
	}
}

// Register binds a message type to its handler. Last registration wins.
func (r *Router) Register(t domain.MessageType, fn HandlerFunc) {
	r.handlers[t] = fn
}

// Handle dispatches one request and always produces exactly one
// response envelope: handler errors and panics both become
// {success:false, error}.
func (r *Router) Handle(ctx context.Context, req domain.Request) (resp domain.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("handler panicked",
				logger.String("type", string(req.Type)))
			resp = domain.Failf(fmt.Sprintf("internal error handling %s", req.Type))
		}
	}()

	fn, ok := r.handlers[req.Type]
	if !ok {
		r.logger.Warn("unknown message type", logger.String("type", string(req.Type)))
		return domain.Failf(fmt.Sprintf("unknown message type: %s", req.Type))
	}

	data, err := fn(ctx, req.Payload)
	if err != nil {
		r.logger.Warn("request failed",
			logger.String("type", string(req.Type)),
			logger.Error(err))
		return domain.Fail(err)
	}

	r.logger.Debug("request handled", logger.String("type", string(req.Type)))
	return domain.OK(data)
}
