package model

import "time"

// Category classifies a resume bullet. The generator asks the model for an
// even 2/2/2/2 split across the four categories but accepts whatever the
// model actually assigns.
type Category string

const (
	CategoryArchitecture Category = "Architecture"
	CategoryFeature      Category = "Feature"
	CategoryQuality      Category = "Quality"
	CategoryTooling      Category = "Tooling"
)

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryArchitecture, CategoryFeature, CategoryQuality, CategoryTooling:
		return true
	}
	return false
}

// Confidence is the model's self-reported trust in a bullet:
// high = directly supported by commit data, medium = reasonably inferred,
// low = educated guess.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Valid reports whether c is one of the three known confidence levels.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}

// Mode selects the generation persona. It changes what the prompt emphasises,
// not the shape of the output.
type Mode string

const (
	ModeStandard  Mode = "standard"
	ModeTechnical Mode = "technical"
	ModeImpact    Mode = "impact"
	ModeEntry     Mode = "entry"
)

// Valid reports whether m is one of the four known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeStandard, ModeTechnical, ModeImpact, ModeEntry:
		return true
	}
	return false
}

// ResumeBullet is one generated, categorised resume bullet point.
// IDs are opaque and unique within a single response. Lists of bullets are
// only ever replaced wholesale — there is no per-bullet mutation.
type ResumeBullet struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Category   Category   `json:"category"`
	Tech       []string   `json:"tech"`
	Confidence Confidence `json:"confidence"`
}

// GenerateResponse is the body of a successful POST /api/generate.
type GenerateResponse struct {
	Success     bool           `json:"success"`
	Bullets     []ResumeBullet `json:"bullets"`
	Mode        Mode           `json:"mode"`
	Username    string         `json:"username"`
	GeneratedAt time.Time      `json:"generatedAt"`
}
