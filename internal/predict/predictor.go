// internal/predict/predictor.go
package predict

import (
	"encoding/json"
	"os"
	"time"

	"fretwatch/internal/collection"
	apperrors "fretwatch/internal/common/errors"
	"fretwatch/internal/common/logger"
	"fretwatch/internal/knowledge"
	"fretwatch/internal/models"
)

// Provider supplies the optional secondary score for blending. A nil score
// with a nil error means "no model available"; callers fall back to the
// pure composite and must not treat it as a failure.
type Provider interface {
	Predict(listing models.ListingSnapshot, valuation models.ValuationResult, profile *collection.Profile) (*float64, error)
}

// NullProvider always reports no model. Used before the first training run.
type NullProvider struct{}

func (NullProvider) Predict(models.ListingSnapshot, models.ValuationResult, *collection.Profile) (*float64, error) {
	return nil, nil
}

// LinearModel is a trained ridge model persisted as JSON: one coefficient
// per canonical feature plus an intercept.
type LinearModel struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	TrainedAt    time.Time `json:"trainedAt"`
	Samples      int       `json:"samples"`
}

// FileProvider lazily loads a LinearModel from disk. A missing or
// malformed model file is a cold start, not an error.
type FileProvider struct {
	path      string
	extractor *Extractor
	logger    logger.Logger

	loaded bool
	model  *LinearModel
}

func NewFileProvider(path string, kb *knowledge.Base, log logger.Logger) *FileProvider {
	return &FileProvider{
		path:      path,
		extractor: NewExtractor(kb),
		logger:    log.WithFields(map[string]interface{}{"component": "predictor"}),
	}
}

func (p *FileProvider) ensureLoaded() {
	if p.loaded {
		return
	}
	p.loaded = true

	raw, err := os.ReadFile(p.path)
	if err != nil {
		p.logger.Info("no trained model found, secondary scoring disabled", map[string]interface{}{
			"path": p.path,
		})
		return
	}

	var m LinearModel
	if err := json.Unmarshal(raw, &m); err != nil || len(m.Coefficients) != FeatureCount {
		p.logger.Warn("trained model unreadable, secondary scoring disabled", map[string]interface{}{
			"path": p.path,
		})
		return
	}

	p.model = &m
	p.logger.Info("secondary model loaded", map[string]interface{}{
		"trainedAt": m.TrainedAt,
		"samples":   m.Samples,
	})
}

// Available reports whether a usable model is loaded.
func (p *FileProvider) Available() bool {
	p.ensureLoaded()
	return p.model != nil
}

// Predict scores one listing with the trained model, clamped to [0,100].
// Returns (nil, nil) on cold start.
func (p *FileProvider) Predict(
	listing models.ListingSnapshot,
	valuation models.ValuationResult,
	profile *collection.Profile,
) (*float64, error) {
	p.ensureLoaded()
	if p.model == nil {
		return nil, nil
	}

	features := p.extractor.Extract(listing, valuation, profile)
	score := p.model.Intercept
	for i, c := range p.model.Coefficients {
		score += c * features[i]
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return &score, nil
}

// Save persists a trained model for later FileProvider loads.
func (m *LinearModel) Save(path string) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// Load reads a trained model from disk, failing loudly. Training tools use
// this; scoring goes through FileProvider which degrades instead.
func Load(path string) (*LinearModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ErrModelUnavailable
	}
	var m LinearModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, apperrors.ErrModelUnavailable
	}
	if len(m.Coefficients) != FeatureCount {
		return nil, apperrors.ErrModelUnavailable
	}
	return &m, nil
}
