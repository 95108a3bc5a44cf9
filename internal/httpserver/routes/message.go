package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/revisit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/revisit/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/revisit/internal/httpserver/mw"
)

func init() { Register(registerMessage) }

func registerMessage(r chi.Router, d deps.Deps) {
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Post("/api/message", handlers.Message(d))
}
