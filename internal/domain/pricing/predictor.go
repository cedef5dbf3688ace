package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrPredictorUnavailable is returned by Predict on a predictor that has no
// loaded model. The decision engine never invokes Predict in that state; the
// error exists for misuse outside the engine.
var ErrPredictorUnavailable = errors.New("no trained model loaded")

// Predictor is the statistical pricing model contract. Implementations are
// substitutable: the decision engine depends only on this interface and
// degrades to rules when Available reports false or Predict fails.
type Predictor interface {
	// Available reports whether a trained model is loaded and usable.
	Available() bool

	// Predict returns a point price estimate plus per-feature importances
	// for the given feature vector.
	Predict(fv FeatureVector) (price float64, importances map[string]float64, err error)
}

// UnavailablePredictor is the null predictor used when no model artifact
// could be loaded.
type UnavailablePredictor struct{}

func (UnavailablePredictor) Available() bool { return false }

func (UnavailablePredictor) Predict(FeatureVector) (float64, map[string]float64, error) {
	return 0, nil, ErrPredictorUnavailable
}

// ModelArtifact is the serialized form of a trained pricing model. It is
// produced offline and loaded once at process startup. FeatureNames pins the
// feature ordering the weights were trained against.
type ModelArtifact struct {
	FeatureNames []string           `json:"feature_names"`
	Weights      []float64          `json:"weights"`
	Intercept    float64            `json:"intercept"`
	Importance   map[string]float64 `json:"importance"`
	TrainedAt    time.Time          `json:"trained_at"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
}

// ArtifactPredictor is a linear regressor loaded from a ModelArtifact file.
type ArtifactPredictor struct {
	weights    [NumFeatures]float64
	intercept  float64
	importance map[string]float64
}

// LoadArtifact reads and validates a model artifact. The artifact's feature
// ordering must match this build's FeatureVector layout exactly.
func LoadArtifact(path string) (*ArtifactPredictor, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var artifact ModelArtifact
	if err := json.Unmarshal(b, &artifact); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}

	if len(artifact.Weights) != NumFeatures {
		return nil, fmt.Errorf("model artifact has %d weights, want %d", len(artifact.Weights), NumFeatures)
	}
	if len(artifact.FeatureNames) != NumFeatures {
		return nil, fmt.Errorf("model artifact has %d feature names, want %d", len(artifact.FeatureNames), NumFeatures)
	}
	for i, name := range artifact.FeatureNames {
		if name != featureNames[i] {
			return nil, fmt.Errorf("model artifact feature %d is %q, want %q", i, name, featureNames[i])
		}
	}

	p := &ArtifactPredictor{
		intercept:  artifact.Intercept,
		importance: artifact.Importance,
	}
	copy(p.weights[:], artifact.Weights)
	if p.importance == nil {
		p.importance = map[string]float64{}
	}
	return p, nil
}

func (p *ArtifactPredictor) Available() bool { return true }

func (p *ArtifactPredictor) Predict(fv FeatureVector) (float64, map[string]float64, error) {
	price := p.intercept
	for i, w := range p.weights {
		price += w * fv[i]
	}

	importances := make(map[string]float64, len(p.importance))
	for name, imp := range p.importance {
		importances[name] = imp
	}
	return price, importances, nil
}

// LoadPredictor loads a model artifact from path, degrading to the
// UnavailablePredictor when the path is empty, missing, or the artifact is
// corrupt. Model loading failure is never fatal to the process.
func LoadPredictor(path string) Predictor {
	if path == "" {
		log.Info().Msg("No model artifact configured, using rule-based pricing")
		return UnavailablePredictor{}
	}

	p, err := LoadArtifact(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to load model artifact, using rule-based fallback")
		return UnavailablePredictor{}
	}

	log.Info().Str("path", path).Msg("Loaded pricing model artifact")
	return p
}

// topImportances returns the n highest-importance features in descending
// order, ties broken by name for deterministic output.
func topImportances(importances map[string]float64, n int) []featureImportance {
	ranked := make([]featureImportance, 0, len(importances))
	for name, imp := range importances {
		ranked = append(ranked, featureImportance{Name: name, Importance: imp})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Importance != ranked[j].Importance {
			return ranked[i].Importance > ranked[j].Importance
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

type featureImportance struct {
	Name       string
	Importance float64
}
