package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
	"github.com/cafesv/whatsapp-sentiment-back/internal/http/middleware"
	"github.com/cafesv/whatsapp-sentiment-back/internal/service"
)

// API bundles every HTTP handler with its collaborators.
type API struct {
	messages  *service.MessageService
	dashboard *service.DashboardService
	queueName string
}

func NewAPI(messages *service.MessageService, dashboard *service.DashboardService, queueName string) *API {
	return &API{
		messages:  messages,
		dashboard: dashboard,
		queueName: queueName,
	}
}

// envelope is the response shape every endpoint returns.
type envelope struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errorEnvelope struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func writeJSON(w http.ResponseWriter, statusCode int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}

func writeSuccess(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, envelope{Code: "SUCCESS", Message: message, Data: data})
}

func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorEnvelope{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetRequestID(r.Context()),
	})
}

func limitParam(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}

// messageDTO is the wire shape of a stored message. Analysis fields are
// omitted while the record is pending.
type messageDTO struct {
	ID         string           `json:"id"`
	Text       string           `json:"texto_mensaje"`
	Sender     string           `json:"numero_remitente"`
	MessageSID string           `json:"message_sid,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
	Sentiment  domain.Sentiment `json:"sentimiento,omitempty"`
	Topic      string           `json:"tema,omitempty"`
	Summary    string           `json:"resumen,omitempty"`
	Status     string           `json:"status"`
}

func toMessageDTO(message domain.Message) messageDTO {
	dto := messageDTO{
		ID:         message.ID,
		Text:       message.Text,
		Sender:     message.Sender,
		MessageSID: message.MessageSID,
		Timestamp:  message.ReceivedAt,
		Status:     domain.StatusPendingAnalysis,
	}
	if message.Analyzed() {
		dto.Sentiment = message.Sentiment
		dto.Topic = message.Topic
		dto.Summary = message.Summary
		dto.Status = domain.StatusAnalyzed
	}
	return dto
}
