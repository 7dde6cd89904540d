package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cafesv/whatsapp-sentiment-back/internal/http/handlers"
	"github.com/cafesv/whatsapp-sentiment-back/internal/http/middleware"
)

type RouterDependencies struct {
	API            *handlers.API
	WebSocket      http.HandlerFunc
	Logger         *slog.Logger
	AuthToken      string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(deps RouterDependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Trace(deps.Logger))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: deps.CORSOrigins,
	}))
	r.Use(middleware.RateLimit(deps.RateLimitRPS, deps.RateLimitBurst))
	r.Use(middleware.Auth(deps.AuthToken))

	r.Get("/healthz", deps.API.Health)
	r.Get("/api/health", deps.API.Health)

	r.Route("/webhook", func(r chi.Router) {
		r.Post("/whatsapp", deps.API.ReceiveWhatsApp)
		r.Post("/whatsapp/test", deps.API.ReceiveTestMessage)
		r.Get("/queue/status", deps.API.QueueStatus)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/estadisticas", deps.API.Statistics)
		r.Get("/distribucion-sentimientos", deps.API.SentimentDistribution)
		r.Get("/temas-frecuentes", deps.API.TopTopics)
		r.Get("/mensajes-recientes", deps.API.RecentMessages)
	})

	if deps.WebSocket != nil {
		r.Get("/ws", deps.WebSocket)
	}

	return r
}
