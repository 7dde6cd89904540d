package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
)

func seedAnalyzedMessage(t *testing.T, fixture apiFixture, text string, analysis domain.Analysis) string {
	t.Helper()
	ctx := context.Background()

	id, err := fixture.repo.Save(ctx, domain.NewMessage(text, "+50370000000", ""))
	require.NoError(t, err)
	require.NoError(t, fixture.repo.UpdateAnalysis(ctx, id, analysis))
	return id
}

func TestStatisticsEndpoint(t *testing.T) {
	fixture := newAPIFixture()
	seedAnalyzedMessage(t, fixture, "excelente atención", domain.Analysis{
		Sentiment: domain.SentimentPositive,
		Topic:     domain.TopicCustomerService,
		Summary:   "Cliente satisfecho",
	})
	seedAnalyzedMessage(t, fixture, "el local estaba sucio", domain.Analysis{
		Sentiment: domain.SentimentNegative,
		Topic:     domain.TopicCleanliness,
		Summary:   "Queja por limpieza",
	})

	request := httptest.NewRequest(http.MethodGet, "/api/estadisticas", nil)
	recorder := httptest.NewRecorder()
	fixture.api.Statistics(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeEnvelope(t, recorder)
	assert.Equal(t, "SUCCESS", body.Code)

	raw, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var stats domain.DashboardStats
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Equal(t, int64(2), stats.TotalMessages)
	assert.Equal(t, 50, stats.PositivePct)
	assert.Equal(t, 50, stats.NegativePct)
}

func TestRecentMessagesOmitsAnalysisWhilePending(t *testing.T) {
	fixture := newAPIFixture()

	_, err := fixture.repo.Save(context.Background(), domain.NewMessage("aún pendiente", "+50370000002", ""))
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, "/api/mensajes-recientes", nil)
	recorder := httptest.NewRecorder()
	fixture.api.RecentMessages(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	payload := recorder.Body.String()
	assert.Contains(t, payload, `"status":"pending_analysis"`)
	assert.NotContains(t, payload, `"sentimiento"`)
	assert.NotContains(t, payload, `"resumen"`)
}

func TestRecentMessagesHonorsLimit(t *testing.T) {
	fixture := newAPIFixture()
	for i := 0; i < 5; i++ {
		_, err := fixture.repo.Save(context.Background(), domain.NewMessage("mensaje", "+50370000003", ""))
		require.NoError(t, err)
	}

	request := httptest.NewRequest(http.MethodGet, "/api/mensajes-recientes?limit=2", nil)
	recorder := httptest.NewRecorder()
	fixture.api.RecentMessages(recorder, request)

	body := decodeEnvelope(t, recorder)
	items := body.Data.([]any)
	assert.Len(t, items, 2)
}

func TestTopTopicsEndpoint(t *testing.T) {
	fixture := newAPIFixture()
	for i := 0; i < 3; i++ {
		seedAnalyzedMessage(t, fixture, "muy caro", domain.Analysis{
			Sentiment: domain.SentimentNegative,
			Topic:     domain.TopicPrice,
			Summary:   "Queja por precio",
		})
	}
	seedAnalyzedMessage(t, fixture, "buen ambiente", domain.Analysis{
		Sentiment: domain.SentimentPositive,
		Topic:     domain.TopicAmbience,
		Summary:   "Cliente cómodo",
	})

	request := httptest.NewRequest(http.MethodGet, "/api/temas-frecuentes?limit=1", nil)
	recorder := httptest.NewRecorder()
	fixture.api.TopTopics(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	payload := recorder.Body.String()
	assert.Contains(t, payload, `"tema":"Precio"`)
	assert.Contains(t, payload, `"cantidad":3`)
	assert.NotContains(t, payload, domain.TopicAmbience)
}
