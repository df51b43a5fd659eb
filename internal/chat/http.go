// internal/chat/http.go
package chat

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scholarship-advisor/internal/common/logger"
)

// HTTPHandler serves POST /chat, streaming one JSON block per line as the
// turn progresses.
type HTTPHandler struct {
	service *Service
	logger  logger.Logger
}

func NewHTTPHandler(service *Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		service: service,
		logger:  log.With(map[string]interface{}{"component": "chat-http"}),
	}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	err := h.service.HandleTurn(r.Context(), &req, func(block Block) {
		if err := enc.Encode(block); err != nil {
			h.logger.Warn("block write failed", map[string]interface{}{"error": err.Error()})
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	})
	if err != nil {
		// Headers are already out; the best we can do is log and cut the stream.
		h.logger.Error("turn failed", map[string]interface{}{"error": err.Error()})
	}
}

// NewRouter wires the full HTTP surface.
func NewRouter(service *Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/chat", NewHTTPHandler(service, log))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
