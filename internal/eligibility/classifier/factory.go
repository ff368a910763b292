// internal/eligibility/classifier/factory.go
package classifier

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"loan-eligibility-workers/internal/common/config"
	apperrors "loan-eligibility-workers/internal/common/errors"
	"loan-eligibility-workers/internal/common/logger"
)

// New builds the classifier described by cfg. redisClient may be nil when caching is disabled.
// A linear model that cannot be loaded is reported as a MODEL_LOAD_FAILED StandardError.
func New(cfg config.ModelConfig, redisClient *redis.Client, log logger.Logger) (Classifier, error) {
	var (
		base      Classifier
		namespace string
	)

	switch cfg.Type {
	case config.ModelTypeLinear, "":
		model, err := LoadLinearModel(cfg.Path)
		if err != nil {
			return nil, apperrors.NewModelLoadFailedError(cfg.Path, err)
		}
		base = model
		namespace = "linear:" + model.Version + ":" + model.Fingerprint()
		log.Info("linear model loaded", map[string]interface{}{
			"path":        cfg.Path,
			"version":     model.Version,
			"fingerprint": model.Fingerprint(),
		})
	case config.ModelTypeRemote:
		base = NewRemoteClassifier(cfg.RemoteURL, config.GetDuration(cfg.Timeout))
		namespace = "remote:" + cfg.RemoteURL
		log.Info("remote model configured", map[string]interface{}{
			"url": cfg.RemoteURL,
		})
	default:
		return nil, fmt.Errorf("unknown model type %q", cfg.Type)
	}

	if !cfg.CacheEnabled || redisClient == nil {
		return base, nil
	}
	return NewCachedClassifier(base, redisClient, time.Duration(cfg.CacheTTL)*time.Second, namespace, log), nil
}
