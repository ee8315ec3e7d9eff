package ml

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"phoneprice/metrics"
)

const DefaultCacheSize = 1024

// Prediction is the outcome of one inference call.
type Prediction struct {
	Class         PredictedClass `json:"class"`
	Label         PriceLabel     `json:"label"`
	Confidence    float64        `json:"confidence"`
	SchemaVersion string         `json:"schema_version"`
}

type cacheKey struct {
	generation uint64
	vector     [NumFeatures]float64
}

// Predictor turns a FeatureVector into a price tier using the model handed
// out by its source. Identical vectors against the same model generation are
// answered from an LRU cache since prediction is deterministic.
type Predictor struct {
	source    ModelSource
	logger    *zap.Logger
	cacheSize int
	cache     *lru.Cache[cacheKey, Prediction]

	mu         sync.Mutex
	generation uint64
}

type PredictorOption func(*Predictor)

// WithCacheSize bounds the prediction cache. Zero disables caching.
func WithCacheSize(size int) PredictorOption {
	return func(p *Predictor) {
		p.cacheSize = size
	}
}

func WithLogger(logger *zap.Logger) PredictorOption {
	return func(p *Predictor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPredictor(source ModelSource, opts ...PredictorOption) (*Predictor, error) {
	if source == nil {
		return nil, errors.New("model source is required")
	}
	p := &Predictor{
		source:    source,
		logger:    zap.NewNop(),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cacheSize < 0 {
		return nil, fmt.Errorf("invalid cache size %d", p.cacheSize)
	}
	if p.cacheSize > 0 {
		cache, err := lru.New[cacheKey, Prediction](p.cacheSize)
		if err != nil {
			return nil, err
		}
		p.cache = cache
	}
	return p, nil
}

// Ready reports whether a model can be obtained from the source.
func (p *Predictor) Ready() error {
	if _, _, err := p.source.Current(); err != nil {
		return fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	return nil
}

func (p *Predictor) Predict(ctx context.Context, features FeatureVector) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	start := time.Now()
	defer func() {
		metrics.PredictDuration.Observe(time.Since(start).Seconds())
	}()

	if err := features.Validate(); err != nil {
		metrics.PredictionErrors.WithLabelValues("out_of_range").Inc()
		return Prediction{}, err
	}

	model, generation, err := p.source.Current()
	if err != nil {
		metrics.PredictionErrors.WithLabelValues("model_unavailable").Inc()
		return Prediction{}, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	p.track(generation)

	vector := features.Vector()
	key := cacheKey{generation: generation}
	copy(key.vector[:], vector)
	if p.cache != nil {
		if cached, ok := p.cache.Get(key); ok {
			metrics.Predictions.WithLabelValues(string(cached.Label)).Inc()
			return cached, nil
		}
	}

	class, confidence, err := model.Predict(vector)
	if err != nil {
		reason := "model_error"
		if errors.Is(err, ErrSchemaMismatch) {
			reason = "schema_mismatch"
		}
		metrics.PredictionErrors.WithLabelValues(reason).Inc()
		return Prediction{}, fmt.Errorf("predict: %w", err)
	}

	label, err := LabelFor(PredictedClass(class))
	if err != nil {
		metrics.PredictionErrors.WithLabelValues("unknown_class").Inc()
		p.logger.Error("model returned a class outside the label table", zap.Int("class", class))
		return Prediction{}, err
	}

	prediction := Prediction{
		Class:         PredictedClass(class),
		Label:         label,
		Confidence:    confidence,
		SchemaVersion: SchemaVersion,
	}
	if p.cache != nil {
		p.cache.Add(key, prediction)
	}
	metrics.Predictions.WithLabelValues(string(label)).Inc()
	p.logger.Debug("prediction",
		zap.Int("class", class),
		zap.String("label", string(label)),
		zap.Float64("confidence", confidence))
	return prediction, nil
}

// track drops cached results once the source starts serving a new
// generation. Keys carry the generation too, so a stale entry is never
// returned even between the swap and the purge.
func (p *Predictor) track(generation uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation == generation {
		return
	}
	if p.generation != 0 && p.cache != nil {
		p.cache.Purge()
	}
	p.generation = generation
}

// StaticSource serves a single, already loaded model as generation 1.
type StaticSource struct {
	Model Model
}

func (s StaticSource) Current() (Model, uint64, error) {
	if s.Model == nil {
		return nil, 0, errors.New("no model configured")
	}
	return s.Model, 1, nil
}
