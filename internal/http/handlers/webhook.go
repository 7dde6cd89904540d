package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ReceiveWhatsApp handles Twilio's form-encoded webhook. The message is
// persisted and queued; the response never waits for the analysis.
func (api *API) ReceiveWhatsApp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_PAYLOAD", "malformed form payload")
		return
	}

	body := strings.TrimSpace(r.PostFormValue("Body"))
	from := strings.TrimSpace(r.PostFormValue("From"))
	messageSID := strings.TrimSpace(r.PostFormValue("MessageSid"))

	if body == "" {
		writeError(w, r, http.StatusBadRequest, "INVALID_PAYLOAD", "campo 'Body' es requerido")
		return
	}
	if from == "" {
		writeError(w, r, http.StatusBadRequest, "INVALID_PAYLOAD", "campo 'From' es requerido")
		return
	}

	messageID, err := api.messages.Receive(r.Context(), body, from, messageSID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "no se pudo guardar el mensaje")
		return
	}

	writeSuccess(w, "Mensaje recibido y en proceso de análisis", map[string]any{
		"message_id": messageID,
		"status":     "success",
	})
}

type testMessageRequest struct {
	Text       string `json:"texto_mensaje"`
	Sender     string `json:"numero_remitente"`
	MessageSID string `json:"message_sid,omitempty"`
}

// ReceiveTestMessage simulates an inbound message without Twilio, using a
// JSON body instead of form encoding.
func (api *API) ReceiveTestMessage(w http.ResponseWriter, r *http.Request) {
	var request testMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_PAYLOAD", "body JSON inválido")
		return
	}
	if strings.TrimSpace(request.Text) == "" || strings.TrimSpace(request.Sender) == "" {
		writeError(w, r, http.StatusBadRequest, "INVALID_PAYLOAD",
			"se requieren 'texto_mensaje' y 'numero_remitente' en el body JSON")
		return
	}

	messageID, err := api.messages.Receive(r.Context(), request.Text, request.Sender, request.MessageSID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "no se pudo guardar el mensaje")
		return
	}

	writeSuccess(w, "Mensaje encolado para análisis", map[string]any{
		"message_id": messageID,
		"status":     "SUCCESS",
		"info":       "El análisis se completará en segundos. Consulta /api/mensajes-recientes para ver el resultado",
	})
}

// QueueStatus reports the number of jobs waiting for the worker.
func (api *API) QueueStatus(w http.ResponseWriter, r *http.Request) {
	size, err := api.messages.QueueSize(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "no se pudo consultar la cola")
		return
	}

	writeSuccess(w, "", map[string]any{
		"pending_messages": size,
		"queue_name":       api.queueName,
	})
}
