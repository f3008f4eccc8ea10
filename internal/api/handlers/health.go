package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/treasurymatch/treasury-match/internal/api/dto"
)

// Health reports process liveness for load balancers. It needs no service
// state, so it is a plain handler func rather than a Base handler.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(dto.NewHealthResponse())
}
