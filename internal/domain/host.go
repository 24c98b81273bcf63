package domain

import "time"

// Host genders, used to key the synthesis voice pools.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// VoiceProfile describes how a host should sound when synthesized.
type VoiceProfile struct {
	SpeakerID       string  `json:"speakerId"`
	Gender          string  `json:"gender"`
	LanguageCode    string  `json:"languageCode"`
	Pitch           float64 `json:"pitch"`
	SpeakingRate    float64 `json:"speakingRate"`
	ExplicitVoiceID string  `json:"explicitVoiceId,omitempty"`
}

// Host is a radio persona supplied by the station roster.
type Host struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Personality string       `json:"personality,omitempty"`
	Gender      string       `json:"gender"`
	Voice       VoiceProfile `json:"voiceConfig"`
	Enabled     bool         `json:"enabled"`
	Order       int          `json:"order"`
}

// FirstName returns the host's first-name alias used for dialogue attribution.
func (h *Host) FirstName() string {
	for i, r := range h.Name {
		if r == ' ' {
			return h.Name[:i]
		}
	}
	return h.Name
}

// CachedIntro is the single-slot station intro asset.
type CachedIntro struct {
	AudioURL    string    `json:"audioUrl"`
	Script      string    `json:"script"`
	HostID      string    `json:"hostId"`
	HostName    string    `json:"hostName"`
	GeneratedAt time.Time `json:"generatedAt"`
}
