// Package classifier loads the exported scaler and MLP and reduces per-frame
// predictions to one label per clip.
package classifier

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrRosterMismatch means the artifact was trained with a different label order.
var ErrRosterMismatch = errors.New("artifact roster does not match configured roster")

// Artifact is the JSON export of a fitted StandardScaler and MLPClassifier.
type Artifact struct {
	Roster            []string       `json:"roster"`
	RosterFingerprint string         `json:"roster_fingerprint"`
	Dim               int            `json:"dim"`
	Scaler            ScalerParams   `json:"scaler"`
	Classifier        ClassifierSpec `json:"classifier"`
}

// ScalerParams holds per-feature standardization parameters.
type ScalerParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// ClassifierSpec describes a dense feed-forward network.
type ClassifierSpec struct {
	Activation string      `json:"activation"`
	Layers     []LayerSpec `json:"layers"`
}

// LayerSpec is one dense layer; Weights is shaped [inputs][outputs].
type LayerSpec struct {
	Weights [][]float64 `json:"weights"`
	Biases  []float64   `json:"biases"`
}

// Fingerprint identifies a roster by content and order.
func Fingerprint(roster []string) string {
	sum := sha256.Sum256([]byte(strings.Join(roster, "\n")))
	return hex.EncodeToString(sum[:])
}

// LoadArtifact reads and validates an artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid artifact %s: %w", path, err)
	}
	return &a, nil
}

// Save writes the artifact as indented JSON, filling in the fingerprint.
func (a *Artifact) Save(path string) error {
	a.RosterFingerprint = Fingerprint(a.Roster)
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// Validate checks internal consistency: fingerprint, scaler width and layer shapes.
func (a *Artifact) Validate() error {
	if len(a.Roster) == 0 {
		return errors.New("empty roster")
	}
	if a.RosterFingerprint != "" && a.RosterFingerprint != Fingerprint(a.Roster) {
		return fmt.Errorf("%w: stored fingerprint does not match stored roster", ErrRosterMismatch)
	}
	if a.Dim <= 0 {
		return fmt.Errorf("dim must be positive, got %d", a.Dim)
	}
	if len(a.Scaler.Mean) != a.Dim || len(a.Scaler.Scale) != a.Dim {
		return fmt.Errorf("scaler has %d means and %d scales, want %d", len(a.Scaler.Mean), len(a.Scaler.Scale), a.Dim)
	}
	if len(a.Classifier.Layers) == 0 {
		return errors.New("classifier has no layers")
	}
	if _, err := parseActivation(a.Classifier.Activation); err != nil {
		return err
	}

	in := a.Dim
	for i, l := range a.Classifier.Layers {
		if len(l.Weights) != in {
			return fmt.Errorf("layer %d has %d weight rows, want %d", i, len(l.Weights), in)
		}
		out := len(l.Biases)
		if out == 0 {
			return fmt.Errorf("layer %d has no outputs", i)
		}
		for r, row := range l.Weights {
			if len(row) != out {
				return fmt.Errorf("layer %d row %d has %d weights, want %d", i, r, len(row), out)
			}
		}
		in = out
	}

	classes := in
	if classes == 1 {
		classes = 2
	}
	if classes != len(a.Roster) {
		return fmt.Errorf("classifier has %d classes but roster has %d labels", classes, len(a.Roster))
	}
	return nil
}

// VerifyRoster fails with ErrRosterMismatch unless roster equals the
// artifact's roster label for label.
func (a *Artifact) VerifyRoster(roster []string) error {
	if Fingerprint(roster) != Fingerprint(a.Roster) {
		return fmt.Errorf("%w: artifact %v, configured %v", ErrRosterMismatch, a.Roster, roster)
	}
	return nil
}

// NewScaler builds the scaler described by the artifact.
func (a *Artifact) NewScaler() *StandardScaler {
	return NewStandardScaler(a.Scaler.Mean, a.Scaler.Scale)
}

// NewModel builds the MLP described by the artifact.
func (a *Artifact) NewModel() (*MLP, error) {
	return NewMLP(a.Classifier)
}
