package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Complexity is the requested sophistication of the generated scripts.
type Complexity string

const (
	ComplexityBasic    Complexity = "basic"
	ComplexityStandard Complexity = "standard"
	ComplexityAdvanced Complexity = "advanced"
)

// Complexities lists the accepted values in display order.
var Complexities = []Complexity{ComplexityBasic, ComplexityStandard, ComplexityAdvanced}

// ParseComplexity validates a complexity string. Empty means standard.
func ParseComplexity(s string) (Complexity, error) {
	switch Complexity(strings.ToLower(strings.TrimSpace(s))) {
	case "", ComplexityStandard:
		return ComplexityStandard, nil
	case ComplexityBasic:
		return ComplexityBasic, nil
	case ComplexityAdvanced:
		return ComplexityAdvanced, nil
	default:
		return "", fmt.Errorf("unknown complexity %q (want basic, standard or advanced)", s)
	}
}

// Next cycles to the following complexity, wrapping around.
func (c Complexity) Next() Complexity {
	for i, v := range Complexities {
		if v == c {
			return Complexities[(i+1)%len(Complexities)]
		}
	}
	return ComplexityStandard
}

// GenerationRequest is the payload of a single generation call.
type GenerationRequest struct {
	Prompt     string     `json:"prompt"`
	Category   string     `json:"procedure_type,omitempty"`
	Complexity Complexity `json:"complexity"`
	Locale     string     `json:"language"`

	// IdempotencyKey travels as a header, not in the body.
	IdempotencyKey string `json:"-"`
}

// Equal reports whether two requests would produce the same body.
func (r GenerationRequest) Equal(o GenerationRequest) bool {
	return r.Prompt == o.Prompt &&
		r.Category == o.Category &&
		r.Complexity == o.Complexity &&
		r.Locale == o.Locale
}

// Script is one generated file.
type Script struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// GenerationResult is the decoded response of the generation endpoint.
type GenerationResult struct {
	Success           bool     `json:"success"`
	ArtifactID        string   `json:"artifactId,omitempty"`
	Scripts           []Script `json:"scripts"`
	SetupInstructions string   `json:"setup_instructions,omitempty"`
	Dependencies      []string `json:"dependencies,omitempty"`
	Error             string   `json:"error,omitempty"`
}

// UnmarshalJSON accepts both "artifactId" and the older "project_id" key.
func (g *GenerationResult) UnmarshalJSON(data []byte) error {
	type plain GenerationResult
	var wire struct {
		plain
		ProjectID json.RawMessage `json:"project_id"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*g = GenerationResult(wire.plain)
	if g.ArtifactID == "" && len(wire.ProjectID) > 0 {
		g.ArtifactID = rawID(wire.ProjectID)
	}
	return nil
}

// rawID renders a JSON string or number id as a string.
func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
