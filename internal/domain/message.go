package domain

import (
	"strings"
	"time"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positivo"
	SentimentNegative Sentiment = "negativo"
	SentimentNeutral  Sentiment = "neutro"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// Topics the classifier is instructed to choose from. TopicOther is the
// catch-all and the topic used by the fallback analysis.
const (
	TopicCustomerService = "Servicio al Cliente"
	TopicProductQuality  = "Calidad del Producto"
	TopicPrice           = "Precio"
	TopicCleanliness     = "Limpieza"
	TopicAmbience        = "Ambiente"
	TopicOther           = "Otros"
)

// Analysis is the validated sentiment/topic/summary triple produced for a
// message text. JSON tags match the classifier response schema.
type Analysis struct {
	Sentiment Sentiment `json:"sentimiento"`
	Topic     string    `json:"tema"`
	Summary   string    `json:"resumen"`
}

// FallbackAnalysis is returned when the classifier output cannot be parsed.
// It is never written to the cache.
func FallbackAnalysis() Analysis {
	return Analysis{
		Sentiment: SentimentNeutral,
		Topic:     TopicOther,
		Summary:   "No se pudo analizar el mensaje correctamente",
	}
}

// Message is a WhatsApp message record. The four analysis fields are either
// all unset (pending) or all set (analyzed); they are persisted in a single
// atomic update.
type Message struct {
	ID         string
	Text       string
	Sender     string
	MessageSID string
	ReceivedAt time.Time

	Sentiment  Sentiment
	Topic      string
	Summary    string
	AnalyzedAt *time.Time
}

// NewMessage builds a pending record, stripping Twilio's "whatsapp:" prefix
// from the sender number.
func NewMessage(text, sender, messageSID string) *Message {
	return &Message{
		Text:       text,
		Sender:     strings.TrimPrefix(sender, "whatsapp:"),
		MessageSID: messageSID,
		ReceivedAt: time.Now().UTC(),
	}
}

func (m *Message) Analyzed() bool {
	return m.AnalyzedAt != nil
}

// QueueJob is the transport format pushed to the work queue. The job only
// references a record that is already persisted; the record is the durable
// anchor, the job is disposable.
type QueueJob struct {
	MessageID string `json:"message_id"`
	Text      string `json:"texto_mensaje"`
	Sender    string `json:"numero_remitente"`
}
