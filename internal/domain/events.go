package domain

import "encoding/json"

type EventName string

const (
	EventMessageReceived EventName = "message_received"
	EventMessageAnalyzed EventName = "message_analyzed"
	EventStatsUpdated    EventName = "stats_updated"
	EventError           EventName = "error"
)

// Event is the envelope published on the dashboard channel. Data holds one of
// the payload structs below, already encoded.
type Event struct {
	Name EventName       `json:"event"`
	Data json.RawMessage `json:"data"`
}

const (
	StatusPendingAnalysis = "pending_analysis"
	StatusAnalyzed        = "analyzed"
)

type MessageReceivedEvent struct {
	MessageID string `json:"message_id"`
	Sender    string `json:"numero_remitente"`
	Text      string `json:"texto_mensaje"`
	Status    string `json:"status"`
}

type MessageAnalyzedEvent struct {
	MessageID string    `json:"message_id"`
	Sentiment Sentiment `json:"sentimiento"`
	Topic     string    `json:"tema"`
	Summary   string    `json:"resumen"`
	Status    string    `json:"status"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

// DashboardStats is the aggregated snapshot shown on the dashboard header and
// broadcast as stats_updated. Percentages are integers over analyzed messages.
type DashboardStats struct {
	TotalMessages int64  `json:"total_mensajes"`
	PositivePct   int    `json:"sentimiento_positivo"`
	NegativePct   int    `json:"sentimiento_negativo"`
	TopTopic      string `json:"tema_principal"`
}

// SentimentDistribution holds integer percentages per sentiment.
type SentimentDistribution struct {
	Positive int `json:"positivo"`
	Negative int `json:"negativo"`
	Neutral  int `json:"neutro"`
}

type TopicCount struct {
	Topic string `json:"tema"`
	Count int64  `json:"cantidad"`
}
