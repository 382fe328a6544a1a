package models

// Dimension is one of the fixed quality axes a review can score.
type Dimension string

const (
	DimensionCorrectness Dimension = "correctness"
	DimensionReadability Dimension = "readability"
	DimensionSimplicity  Dimension = "simplicity"
	DimensionCoupling    Dimension = "coupling"
	DimensionTestability Dimension = "testability"
)

// Dimensions returns all quality dimensions in canonical render order.
func Dimensions() []Dimension {
	return []Dimension{
		DimensionCorrectness,
		DimensionReadability,
		DimensionSimplicity,
		DimensionCoupling,
		DimensionTestability,
	}
}

// Valid reports whether d is a known quality dimension.
func (d Dimension) Valid() bool {
	switch d {
	case DimensionCorrectness, DimensionReadability, DimensionSimplicity,
		DimensionCoupling, DimensionTestability:
		return true
	}
	return false
}

// CriterionFeedback is per-dimension feedback: an optional evaluation
// label and an ordered list of improvement notes.
type CriterionFeedback struct {
	Label EvaluationLabel `json:"label,omitempty"`
	Notes []string        `json:"notes,omitempty"`
}

// CriteriaFeedback holds at most one feedback item per quality
// dimension. The set of dimensions is closed; a field per dimension
// keeps the shape exhaustive at compile time rather than an open map.
type CriteriaFeedback struct {
	Correctness *CriterionFeedback `json:"correctness,omitempty"`
	Readability *CriterionFeedback `json:"readability,omitempty"`
	Simplicity  *CriterionFeedback `json:"simplicity,omitempty"`
	Coupling    *CriterionFeedback `json:"coupling,omitempty"`
	Testability *CriterionFeedback `json:"testability,omitempty"`
}

// ByDimension returns the feedback item for d, or nil when the review
// carries none for that dimension.
func (c *CriteriaFeedback) ByDimension(d Dimension) *CriterionFeedback {
	if c == nil {
		return nil
	}
	switch d {
	case DimensionCorrectness:
		return c.Correctness
	case DimensionReadability:
		return c.Readability
	case DimensionSimplicity:
		return c.Simplicity
	case DimensionCoupling:
		return c.Coupling
	case DimensionTestability:
		return c.Testability
	}
	return nil
}

// SetDimension stores item under dimension d. Unknown dimensions are
// ignored.
func (c *CriteriaFeedback) SetDimension(d Dimension, item *CriterionFeedback) {
	switch d {
	case DimensionCorrectness:
		c.Correctness = item
	case DimensionReadability:
		c.Readability = item
	case DimensionSimplicity:
		c.Simplicity = item
	case DimensionCoupling:
		c.Coupling = item
	case DimensionTestability:
		c.Testability = item
	}
}

// Empty reports whether no dimension carries feedback.
func (c *CriteriaFeedback) Empty() bool {
	if c == nil {
		return true
	}
	for _, d := range Dimensions() {
		if c.ByDimension(d) != nil {
			return false
		}
	}
	return true
}
