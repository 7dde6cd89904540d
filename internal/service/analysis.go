package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cafesv/whatsapp-sentiment-back/internal/ai"
	"github.com/cafesv/whatsapp-sentiment-back/internal/cache"
	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
)

const DefaultAnalysisCacheTTL = 24 * time.Hour

type AnalysisDependencies struct {
	Generator ai.TextGenerator
	Cache     cache.AnalysisCache
	CacheTTL  time.Duration
	Logger    *slog.Logger
}

// AnalysisService turns raw message text into a validated sentiment/topic/
// summary triple, minimizing classifier calls through the cache.
type AnalysisService struct {
	generator ai.TextGenerator
	cache     cache.AnalysisCache
	cacheTTL  time.Duration
	logger    *slog.Logger
}

func NewAnalysisService(deps AnalysisDependencies) *AnalysisService {
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = DefaultAnalysisCacheTTL
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &AnalysisService{
		generator: deps.Generator,
		cache:     deps.Cache,
		cacheTTL:  deps.CacheTTL,
		logger:    deps.Logger,
	}
}

// Analyze returns the analysis for text. Cache hits are returned unchanged
// without calling the classifier. Unparseable classifier output collapses to
// the fallback triple, which is never cached, so a transient malformed
// response self-heals on the next identical message. Classifier transport
// errors propagate to the caller.
func (s *AnalysisService) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	fingerprint := cache.Fingerprint(text)

	if s.cache != nil {
		if analysis, ok := s.cache.Get(ctx, fingerprint); ok {
			s.logger.Debug("analysis cache hit", "fingerprint", fingerprint)
			return analysis, nil
		}
	}

	raw, err := s.generator.Generate(ctx, buildAnalysisPrompt(text))
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("generate analysis: %w", err)
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		s.logger.Error("unparseable classifier output", "error", err, "raw", raw)
		return domain.FallbackAnalysis(), nil
	}

	if s.cache != nil {
		s.cache.Set(ctx, fingerprint, analysis, s.cacheTTL)
	}
	return analysis, nil
}

// parseAnalysis is the single point that decides parsed-vs-fallback: every
// failure path returns an error and the caller collapses it to the fallback
// triple.
func parseAnalysis(raw string) (domain.Analysis, error) {
	cleaned := stripCodeFences(raw)

	var analysis domain.Analysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return domain.Analysis{}, fmt.Errorf("parse classifier JSON: %w", err)
	}
	if analysis.Sentiment == "" || analysis.Topic == "" || analysis.Summary == "" {
		return domain.Analysis{}, errors.New("classifier response missing required fields")
	}
	if !analysis.Sentiment.Valid() {
		return domain.Analysis{}, fmt.Errorf("unknown sentiment %q", analysis.Sentiment)
	}
	return analysis, nil
}

// stripCodeFences removes markdown code fences the model sometimes wraps
// around its JSON response.
func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

func buildAnalysisPrompt(text string) string {
	return fmt.Sprintf(`Eres un asistente experto en análisis de sentimiento para "Café de El Salvador", una cadena de cafeterías.

Analiza el siguiente mensaje de un cliente y devuelve ÚNICAMENTE un objeto JSON (sin markdown, sin explicaciones adicionales) con la siguiente estructura:

{
  "sentimiento": "positivo" | "negativo" | "neutro",
  "tema": "Servicio al Cliente" | "Calidad del Producto" | "Precio" | "Limpieza" | "Ambiente" | "Otros",
  "resumen": "Breve resumen en una oración de 10-15 palabras"
}

Criterios:
- sentimiento: "positivo" si el cliente está satisfecho, "negativo" si está insatisfecho, "neutro" si es neutral o pregunta
- tema: Categoriza el mensaje en uno de los temas predefinidos
- resumen: Resume la esencia del mensaje en una oración concisa

Mensaje del cliente:
"%s"

Responde SOLO con el objeto JSON, sin formato markdown ni texto adicional:`, text)
}
