package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
)

// AnalysisCache maps a message-text fingerprint to a previously computed
// analysis. It is a pure optimization layer: backend failures degrade to
// "no cache" (every Get misses, every Set is dropped) and are logged by
// implementations, never surfaced to callers.
type AnalysisCache interface {
	Get(ctx context.Context, fingerprint string) (domain.Analysis, bool)
	Set(ctx context.Context, fingerprint string, analysis domain.Analysis, ttl time.Duration)
}

// Fingerprint returns a stable content key for a message text. The text is
// lowercased and trimmed first, so identical texts from different senders
// share one entry.
func Fingerprint(text string) string {
	normalized := strings.TrimSpace(strings.ToLower(text))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func analysisKey(fingerprint string) string {
	return "sentiment:" + fingerprint
}
