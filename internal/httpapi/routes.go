package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hotseatlive/hotseat-backend/internal/engine"
	"github.com/hotseatlive/hotseat-backend/internal/hub"
	"github.com/hotseatlive/hotseat-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, seed engine.State, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/events", CreateEvent(h, seed, log))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))
	return r
}
