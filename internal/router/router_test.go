package router

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/revisit/internal/domain"
	"github.com/MrSnakeDoc/revisit/internal/logger"
)

func TestHandleDispatchesToRegisteredHandler(t *testing.T) {
	r := New(logger.New("error", false))
	r.Register(domain.MsgGetSites, func(context.Context, json.RawMessage) (any, error) {
		return "payload", nil
	})

	resp := r.Handle(context.Background(), domain.Request{Type: domain.MsgGetSites})
	if !resp.Success {
		t.Fatalf("Success = false, error = %q", resp.Error)
	}
	if resp.Data != "payload" {
		t.Fatalf("Data = %v, want payload", resp.Data)
	}
}

func TestHandleUnknownType(t *testing.T) {
	r := New(logger.New("error", false))

	resp := r.Handle(context.Background(), domain.Request{Type: "BOGUS"})
	if resp.Success {
		t.Fatal("Success = true for unknown message type")
	}
	if !strings.Contains(resp.Error, "BOGUS") {
		t.Fatalf("Error = %q, should name the unknown type", resp.Error)
	}
}

func TestHandleWrapsHandlerError(t *testing.T) {
	r := New(logger.New("error", false))
	r.Register(domain.MsgSaveSite, func(context.Context, json.RawMessage) (any, error) {
		return nil, errors.New("boom")
	})

	resp := r.Handle(context.Background(), domain.Request{Type: domain.MsgSaveSite})
	if resp.Success {
		t.Fatal("Success = true for failing handler")
	}
	if resp.Error != "boom" {
		t.Fatalf("Error = %q, want boom", resp.Error)
	}
}

func TestHandleContainsPanics(t *testing.T) {
	r := New(logger.New("error", false))
	r.Register(domain.MsgOpenPopup, func(context.Context, json.RawMessage) (any, error) {
		panic("handler exploded")
	})

	resp := r.Handle(context.Background(), domain.Request{Type: domain.MsgOpenPopup})
	if resp.Success {
		t.Fatal("Success = true for panicking handler")
	}
	if !strings.Contains(resp.Error, "internal error") {
		t.Fatalf("Error = %q, want internal error message", resp.Error)
	}
}

func TestHandleLastRegistrationWins(t *testing.T) {
	r := New(logger.New("error", false))
	r.Register(domain.MsgGetSites, func(context.Context, json.RawMessage) (any, error) {
		return "first", nil
	})
	r.Register(domain.MsgGetSites, func(context.Context, json.RawMessage) (any, error) {
		return "second", nil
	})

	resp := r.Handle(context.Background(), domain.Request{Type: domain.MsgGetSites})
	if resp.Data != "second" {
		t.Fatalf("Data = %v, want second", resp.Data)
	}
}
