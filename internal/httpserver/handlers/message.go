package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/revisit/internal/domain"
	"github.com/MrSnakeDoc/revisit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/revisit/internal/utils"
)

const maxMessageBytes = 64 * 1024

// Message carries the typed request protocol. The response is always
// the envelope with status 200, decode failures included, so a caller
// never has to interpret anything beyond the envelope itself.
func Message(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.Request

		body := http.MaxBytesReader(w, r.Body, maxMessageBytes)
		defer utils.Close(body)
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			writeEnvelope(w, domain.Failf("malformed request"))
			return
		}

		resp := d.Router.Handle(r.Context(), req)
		writeEnvelope(w, resp)
	}
}

func writeEnvelope(w http.ResponseWriter, resp domain.Response) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
