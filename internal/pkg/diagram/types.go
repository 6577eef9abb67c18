package diagram

import (
	"errors"
	"strings"
)

// DiagramType steers the pipeline's output style.
type DiagramType string

const (
	DiagramTypeMethodology  DiagramType = "methodology"
	DiagramTypeFlowchart    DiagramType = "flowchart"
	DiagramTypeArchitecture DiagramType = "architecture"
)

var (
	// ErrInvalidInput means source text or caption were empty after trimming,
	// or the diagram type is unknown. Raised before any external call.
	ErrInvalidInput = errors.New("invalid generation input")

	// ErrPipeline is an external pipeline failure.
	ErrPipeline = errors.New("diagram pipeline error")

	// ErrTimeout means the pipeline call exceeded the configured deadline.
	ErrTimeout = errors.New("diagram generation timed out")
)

// ParseDiagramType validates a diagram-type selector from a form or API call.
func ParseDiagramType(s string) (DiagramType, error) {
	switch DiagramType(strings.ToLower(strings.TrimSpace(s))) {
	case DiagramTypeMethodology:
		return DiagramTypeMethodology, nil
	case DiagramTypeFlowchart:
		return DiagramTypeFlowchart, nil
	case DiagramTypeArchitecture:
		return DiagramTypeArchitecture, nil
	default:
		return "", ErrInvalidInput
	}
}

// GenerationRequest is one diagram generation submission. Constructed fresh
// per request, never persisted.
type GenerationRequest struct {
	SourceText  string      `json:"source_text" validate:"required"`
	Caption     string      `json:"caption" validate:"required"`
	Title       string      `json:"title"`
	DiagramType DiagramType `json:"diagram_type" validate:"required"`
}

// Normalize trims the free-text fields in place.
func (r *GenerationRequest) Normalize() {
	r.SourceText = strings.TrimSpace(r.SourceText)
	r.Caption = strings.TrimSpace(r.Caption)
	r.Title = strings.TrimSpace(r.Title)
}
