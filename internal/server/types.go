package server

import (
	"github.com/godlykids/radio-engine/internal/broadcast"
	"github.com/godlykids/radio-engine/internal/domain"
	"github.com/godlykids/radio-engine/internal/segments"
)

// AssembleRequest represents a request to build a station's broadcast timeline
type AssembleRequest struct {
	Songs []broadcast.SongRef `json:"songs" binding:"required"`
	Hosts []domain.Host       `json:"hosts" binding:"required"`

	// Optional overrides; the configured broadcast defaults apply when omitted
	Frequency   int   `json:"frequency,omitempty"`
	RotateHosts *bool `json:"rotateHosts,omitempty"`
	Shuffle     *bool `json:"shuffle,omitempty"`
}

// GenerateRequest represents a request to generate one host break
type GenerateRequest struct {
	ContentType           string           `json:"contentType" binding:"required"`
	TargetDurationSeconds float64          `json:"targetDurationSeconds"`
	ContentDescription    string           `json:"contentDescription,omitempty"`
	NextTrack             domain.TrackRef  `json:"nextTrack"`
	PreviousTrack         *domain.TrackRef `json:"previousTrack,omitempty"`
	IsDuo                 bool             `json:"isDuo"`
	Hosts                 []domain.Host    `json:"hosts"`
	ForceRegenerate       bool             `json:"forceRegenerate"`
}

// UpdateSegmentRequest represents a partial segment mutation
type UpdateSegmentRequest struct {
	ScriptText      *string  `json:"scriptText,omitempty"`
	AudioURL        *string  `json:"audioUrl,omitempty"`
	Status          *string  `json:"status,omitempty"`
	Order           *int     `json:"order,omitempty"`
	DurationSeconds *float64 `json:"durationSeconds,omitempty"`
	ErrorMessage    *string  `json:"errorMessage,omitempty"`
}

// ReorderRequest represents a bulk reorder of segments
type ReorderRequest struct {
	Segments []segments.OrderPair `json:"segments" binding:"required"`
}

// IntroScriptRequest carries a station's custom intro script update
type IntroScriptRequest struct {
	CustomIntroScript string `json:"customIntroScript"`
}
