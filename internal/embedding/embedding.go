// Package embedding provides vector embedding generation for text.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// ErrConfigMismatch indicates the store's recorded embedding configuration
// differs from the active provider. Mixing embedding spaces silently
// invalidates similarity comparisons, so the operation must halt before
// touching the store.
var ErrConfigMismatch = errors.New("embedding configuration mismatch")

// Config identifies an embedding space: the model that produced the
// vectors and their dimensionality. A store records the config of its
// first ingest and every later ingest and query must match it.
type Config struct {
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
}

// Validate checks that the active config is compatible with the one a
// store has recorded. A zero stored config (no papers yet) matches any
// active config.
func (c Config) Validate(stored Config) error {
	if stored == (Config{}) {
		return nil
	}
	if c != stored {
		return fmt.Errorf("%w: store has %s/%d, active is %s/%d",
			ErrConfigMismatch, stored.Model, stored.Dimensions, c.Model, c.Dimensions)
	}
	return nil
}

// IsZero reports whether no configuration has been recorded.
func (c Config) IsZero() bool {
	return c == Config{}
}

// Provider generates embeddings from text.
type Provider interface {
	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Config returns the embedding space this provider produces.
	Config() Config
}
