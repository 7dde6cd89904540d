package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafesv/whatsapp-sentiment-back/internal/bus"
	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
	"github.com/cafesv/whatsapp-sentiment-back/internal/queue"
	"github.com/cafesv/whatsapp-sentiment-back/internal/repository"
	"github.com/cafesv/whatsapp-sentiment-back/internal/service"
)

type apiFixture struct {
	api   *API
	repo  *repository.MemoryMessagesRepository
	queue *queue.LocalQueue
}

func newAPIFixture() apiFixture {
	repo := repository.NewMemoryMessagesRepository()
	jobQueue := queue.NewLocalQueue(16)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	messages := service.NewMessageService(repo, jobQueue, bus.NewLocalBus(), logger)
	dashboard := service.NewDashboardService(repo)

	return apiFixture{
		api:   NewAPI(messages, dashboard, "message_queue"),
		repo:  repo,
		queue: jobQueue,
	}
}

func postForm(t *testing.T, handler http.HandlerFunc, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder := httptest.NewRecorder()
	handler(recorder, request)
	return recorder
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestReceiveWhatsAppPersistsAndEnqueues(t *testing.T) {
	fixture := newAPIFixture()

	recorder := postForm(t, fixture.api.ReceiveWhatsApp, "/webhook/whatsapp", url.Values{
		"Body":       {"El café estaba frío"},
		"From":       {"whatsapp:+50370000000"},
		"MessageSid": {"SM123"},
	})

	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeEnvelope(t, recorder)
	assert.Equal(t, "SUCCESS", body.Code)

	data := body.Data.(map[string]any)
	messageID := data["message_id"].(string)
	require.NotEmpty(t, messageID)

	message, err := fixture.repo.Get(context.Background(), messageID)
	require.NoError(t, err)
	assert.Equal(t, "El café estaba frío", message.Text)
	assert.Equal(t, "+50370000000", message.Sender, "whatsapp: prefix must be stripped")
	assert.Equal(t, "SM123", message.MessageSID)
	assert.False(t, message.Analyzed())

	size, err := fixture.queue.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}

func TestReceiveWhatsAppRequiresBodyAndFrom(t *testing.T) {
	fixture := newAPIFixture()

	recorder := postForm(t, fixture.api.ReceiveWhatsApp, "/webhook/whatsapp", url.Values{
		"From": {"whatsapp:+50370000000"},
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = postForm(t, fixture.api.ReceiveWhatsApp, "/webhook/whatsapp", url.Values{
		"Body": {"hola"},
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	size, err := fixture.queue.Size(context.Background())
	require.NoError(t, err)
	assert.Zero(t, size, "rejected requests must not enqueue")
}

func TestReceiveTestMessageAcceptsJSON(t *testing.T) {
	fixture := newAPIFixture()

	payload := `{"texto_mensaje":"muy buen servicio","numero_remitente":"+50370000001"}`
	request := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp/test", strings.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	fixture.api.ReceiveTestMessage(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeEnvelope(t, recorder)
	assert.Equal(t, "SUCCESS", body.Code)

	size, err := fixture.queue.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}

func TestReceiveTestMessageRejectsIncompleteJSON(t *testing.T) {
	fixture := newAPIFixture()

	request := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp/test",
		strings.NewReader(`{"texto_mensaje":"sin remitente"}`))
	recorder := httptest.NewRecorder()
	fixture.api.ReceiveTestMessage(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestQueueStatusReportsPendingJobs(t *testing.T) {
	fixture := newAPIFixture()
	require.NoError(t, fixture.queue.Enqueue(context.Background(), domain.QueueJob{MessageID: "a"}))
	require.NoError(t, fixture.queue.Enqueue(context.Background(), domain.QueueJob{MessageID: "b"}))

	request := httptest.NewRequest(http.MethodGet, "/webhook/queue/status", nil)
	recorder := httptest.NewRecorder()
	fixture.api.QueueStatus(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeEnvelope(t, recorder)
	data := body.Data.(map[string]any)
	assert.Equal(t, float64(2), data["pending_messages"])
	assert.Equal(t, "message_queue", data["queue_name"])
}
