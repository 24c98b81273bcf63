package speech

import (
	"math/rand"

	"github.com/godlykids/radio-engine/internal/domain"
)

// Prebuilt voice identifiers understood by the Tier-1 speech backend, keyed
// by host gender.
var (
	maleVoices   = []string{"Puck", "Charon", "Fenrir", "Orus", "Enceladus"}
	femaleVoices = []string{"Kore", "Aoede", "Leda", "Zephyr", "Autonoe"}
)

// VoicePicker selects Tier-1 voices for host profiles. Selection is a uniform
// draw from the gender-keyed pool unless the profile pins an explicit voice.
type VoicePicker struct {
	rng *rand.Rand
}

// NewVoicePicker creates a picker using the given random source.
func NewVoicePicker(rng *rand.Rand) *VoicePicker {
	return &VoicePicker{rng: rng}
}

func poolFor(gender string) []string {
	if gender == domain.GenderMale {
		return maleVoices
	}
	return femaleVoices
}

// Pick returns a voice for the profile.
func (p *VoicePicker) Pick(profile domain.VoiceProfile) string {
	if profile.ExplicitVoiceID != "" {
		return profile.ExplicitVoiceID
	}
	pool := poolFor(profile.Gender)
	return pool[p.rng.Intn(len(pool))]
}

// PickDistinct returns a voice for the profile that differs from taken. When
// the first draw collides it re-draws from the remainder of the pool; two
// speakers in one dialogue must not share a voice.
func (p *VoicePicker) PickDistinct(profile domain.VoiceProfile, taken string) string {
	voice := p.Pick(profile)
	if profile.ExplicitVoiceID != "" || voice != taken {
		return voice
	}

	remainder := make([]string, 0, len(poolFor(profile.Gender)))
	for _, v := range poolFor(profile.Gender) {
		if v != taken {
			remainder = append(remainder, v)
		}
	}
	if len(remainder) == 0 {
		return voice
	}
	return remainder[p.rng.Intn(len(remainder))]
}
