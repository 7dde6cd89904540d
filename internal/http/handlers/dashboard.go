package handlers

import "net/http"

func (api *API) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := api.dashboard.Statistics(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "no se pudieron obtener las estadísticas")
		return
	}
	writeSuccess(w, "Estadísticas obtenidas correctamente", stats)
}

func (api *API) SentimentDistribution(w http.ResponseWriter, r *http.Request) {
	distribution, err := api.dashboard.SentimentDistribution(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "no se pudo obtener la distribución")
		return
	}
	writeSuccess(w, "Distribución de sentimientos obtenida", distribution)
}

func (api *API) TopTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := api.dashboard.TopTopics(r.Context(), limitParam(r, 20))
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "no se pudieron obtener los temas")
		return
	}
	writeSuccess(w, "Temas frecuentes obtenidos", topics)
}

func (api *API) RecentMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := api.dashboard.RecentMessages(r.Context(), limitParam(r, 10))
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "no se pudieron obtener los mensajes")
		return
	}

	dtos := make([]messageDTO, 0, len(messages))
	for _, message := range messages {
		dtos = append(dtos, toMessageDTO(message))
	}
	writeSuccess(w, "Mensajes recientes obtenidos", dtos)
}
