package model

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Manifest is the YAML document exported alongside a trained model.
type Manifest struct {
	Name         string                 `yaml:"name"`
	Version      string                 `yaml:"version"`
	FeatureNames []string               `yaml:"feature_names"`
	Scaler       *ScalerSpec            `yaml:"scaler,omitempty"`
	Encoders     map[string]EncoderSpec `yaml:"encoders,omitempty"`
	Models       map[string]ModelSpec   `yaml:"models"`
}

type ScalerSpec struct {
	Mean  []float64 `yaml:"mean"`
	Scale []float64 `yaml:"scale"`
}

// EncoderSpec is a trained vocabulary. Classes follows the label-encoder
// convention (code = position); Codes spells the mapping out.
type EncoderSpec struct {
	Classes []string       `yaml:"classes,omitempty"`
	Codes   map[string]int `yaml:"codes,omitempty"`
}

type ModelSpec struct {
	Kind       Kind        `yaml:"kind"`
	Classes    []string    `yaml:"classes,omitempty"`
	Weights    [][]float64 `yaml:"weights"`
	Intercepts []float64   `yaml:"intercepts"`
}

// Bundle is a loaded, validated artifact set. It is read-only after load.
type Bundle struct {
	Name         string
	Version      string
	FeatureNames []string
	// Scaler is nil when the models consume raw features.
	Scaler     domain.Scaler
	Vocabulary map[string]map[string]int
	Models     map[string]domain.Model
}

func Parse(data []byte) (*Bundle, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrap(err, "model: parse manifest")
	}
	return m.Build()
}

func (m *Manifest) Build() (*Bundle, error) {
	if m.Name == "" {
		return nil, eris.New("model: manifest has no name")
	}
	if len(m.Models) == 0 {
		return nil, eris.Errorf("model: bundle %s declares no models", m.Name)
	}

	b := &Bundle{
		Name:         m.Name,
		Version:      m.Version,
		FeatureNames: m.FeatureNames,
		Vocabulary:   make(map[string]map[string]int, len(m.Encoders)),
		Models:       make(map[string]domain.Model, len(m.Models)),
	}
	width := len(m.FeatureNames)

	if m.Scaler != nil {
		s, err := NewStandardScaler(m.Scaler.Mean, m.Scaler.Scale)
		if err != nil {
			return nil, eris.Wrapf(err, "model: bundle %s scaler", m.Name)
		}
		if width > 0 && s.Width() != width {
			return nil, eris.Errorf("model: bundle %s scaler covers %d features, manifest lists %d", m.Name, s.Width(), width)
		}
		b.Scaler = s
	}

	for col, spec := range m.Encoders {
		codes, err := spec.vocabulary()
		if err != nil {
			return nil, eris.Wrapf(err, "model: bundle %s encoder %q", m.Name, col)
		}
		b.Vocabulary[col] = codes
	}

	for key, spec := range m.Models {
		model, w, err := spec.build()
		if err != nil {
			return nil, eris.Wrapf(err, "model: bundle %s model %q", m.Name, key)
		}
		if width > 0 && w != width {
			return nil, eris.Errorf("model: bundle %s model %q takes %d features, manifest lists %d", m.Name, key, w, width)
		}
		b.Models[key] = model
	}
	return b, nil
}

func (e EncoderSpec) vocabulary() (map[string]int, error) {
	switch {
	case len(e.Classes) > 0 && len(e.Codes) > 0:
		return nil, fmt.Errorf("set classes or codes, not both")
	case len(e.Classes) > 0:
		out := make(map[string]int, len(e.Classes))
		for i, c := range e.Classes {
			if _, dup := out[c]; dup {
				return nil, fmt.Errorf("duplicate class %q", c)
			}
			out[c] = i
		}
		return out, nil
	case len(e.Codes) > 0:
		out := make(map[string]int, len(e.Codes))
		for k, v := range e.Codes {
			out[k] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("empty vocabulary")
}

func (s ModelSpec) build() (domain.Model, int, error) {
	switch s.Kind {
	case KindLinearRegression:
		if len(s.Weights) != 1 || len(s.Intercepts) != 1 {
			return nil, 0, fmt.Errorf("regression needs exactly one weight row and intercept")
		}
		r, err := NewRegressor(s.Weights[0], s.Intercepts[0])
		if err != nil {
			return nil, 0, err
		}
		return r, r.width(), nil
	case KindLogisticRegression:
		c, err := NewProbabilisticClassifier(s.Classes, s.Weights, s.Intercepts)
		if err != nil {
			return nil, 0, err
		}
		return c, c.width(), nil
	case KindLinearSVC:
		c, err := NewLabelClassifier(s.Classes, s.Weights, s.Intercepts)
		if err != nil {
			return nil, 0, err
		}
		return c, c.width(), nil
	}
	return nil, 0, fmt.Errorf("unsupported kind %q", s.Kind)
}

func LoadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read %s", path)
	}
	return Parse(data)
}

// LoadAll loads dir/<name>.yaml for every name concurrently. A bundle that
// fails is reported in the error map and does not stop the others.
func LoadAll(ctx context.Context, dir string, names []string, logger *zap.Logger) (map[string]*Bundle, map[string]error) {
	var (
		mu       sync.Mutex
		bundles  = make(map[string]*Bundle, len(names))
		failures = make(map[string]error)
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				mu.Lock()
				failures[name] = err
				mu.Unlock()
				return nil
			}

			path := filepath.Join(dir, name+".yaml")
			b, err := LoadFile(path)
			if err == nil && b.Name != name {
				err = eris.Errorf("model: %s holds bundle %q", path, b.Name)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[name] = err
				logger.Error("artifact bundle failed to load", zap.String("bundle", name), zap.Error(err))
				return nil
			}
			bundles[name] = b
			logger.Info("artifact bundle loaded",
				zap.String("bundle", name),
				zap.String("version", b.Version),
				zap.Int("models", len(b.Models)),
			)
			return nil
		})
	}
	_ = g.Wait()
	return bundles, failures
}
