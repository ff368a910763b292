// internal/eligibility/classifier/cached.go
package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "loan-eligibility-workers/internal/common/errors"
	"loan-eligibility-workers/internal/common/logger"
	"loan-eligibility-workers/internal/common/metrics"
	"loan-eligibility-workers/internal/eligibility/decision"
	"loan-eligibility-workers/internal/eligibility/features"
)

// CacheKeyPrefix starts every cached prediction key.
const CacheKeyPrefix = "eligibility:prediction:"

// CachedClassifier memoizes labels in Redis, keyed by a hash of the vector.
// Labels are cached as text; normalization only ever looks at the text form.
type CachedClassifier struct {
	next      Classifier
	redis     *redis.Client
	ttl       time.Duration
	namespace string
	logger    logger.Logger
}

// NewCachedClassifier wraps next. namespace separates entries of different model versions.
func NewCachedClassifier(next Classifier, redisClient *redis.Client, ttl time.Duration, namespace string, log logger.Logger) *CachedClassifier {
	return &CachedClassifier{
		next:      next,
		redis:     redisClient,
		ttl:       ttl,
		namespace: namespace,
		logger:    log.WithFields(map[string]interface{}{"component": "prediction-cache"}),
	}
}

// Predict never fails because of the cache: lookup and write errors are logged and bypassed.
func (c *CachedClassifier) Predict(ctx context.Context, v features.FeatureVector) (Label, error) {
	key := c.Key(v)

	cached, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		metrics.PredictionCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	case errors.Is(err, redis.Nil):
		metrics.PredictionCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.PredictionCacheLookups.WithLabelValues("error").Inc()
		c.warnUnavailable("prediction cache read failed", key, err)
	}

	label, err := c.next.Predict(ctx, v)
	if err != nil {
		return nil, err
	}

	if err := c.redis.Set(ctx, key, decision.LabelText(label), c.ttl).Err(); err != nil {
		c.warnUnavailable("prediction cache write failed", key, err)
	}
	return label, nil
}

func (c *CachedClassifier) warnUnavailable(msg, key string, err error) {
	stdErr := apperrors.NewCacheUnavailableError(err)
	c.logger.Warn(msg, map[string]interface{}{
		"code":      string(stdErr.Code),
		"error":     stdErr.Details,
		"retryable": stdErr.Retryable,
		"key":       key,
	})
}

// Key is the cache key for a vector: namespace plus the SHA-256 of its exact float values.
func (c *CachedClassifier) Key(v features.FeatureVector) string {
	h := sha256.New()
	for _, x := range v {
		h.Write(strconv.AppendFloat(nil, x, 'g', -1, 64))
		h.Write([]byte{','})
	}
	return CacheKeyPrefix + c.namespace + ":" + hex.EncodeToString(h.Sum(nil))
}
