package speech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/godlykids/radio-engine/internal/audio"
	"github.com/godlykids/radio-engine/internal/domain"
	"github.com/godlykids/radio-engine/internal/storage"
)

// Tier1Backend is the preferred generative speech backend. It understands
// bracket emotion cues and multi-speaker scripts.
type Tier1Backend interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, string, error)
	SynthesizeMultiSpeaker(ctx context.Context, text string, speakers []SpeakerVoice) ([]byte, string, error)
}

// Tier2Backend is the legacy single-voice backend tried after Tier 1 fails.
type Tier2Backend interface {
	Synthesize(ctx context.Context, text string, profile domain.VoiceProfile) ([]byte, error)
}

// Synthesizer converts scripts to stored audio through the tiered backend
// chain. Absence of audio is a valid degraded outcome: both tiers failing
// yields an empty URL and a nil error. Only a storage write failure is a hard
// error.
type Synthesizer struct {
	tier1  Tier1Backend
	tier2  Tier2Backend
	store  storage.AudioStore
	voices *VoicePicker
	now    func() time.Time
}

// NewSynthesizer wires the tier chain. Either tier may be nil, which skips it.
func NewSynthesizer(tier1 Tier1Backend, tier2 Tier2Backend, store storage.AudioStore, voices *VoicePicker) *Synthesizer {
	return &Synthesizer{
		tier1:  tier1,
		tier2:  tier2,
		store:  store,
		voices: voices,
		now:    time.Now,
	}
}

// Voices exposes the picker so callers can pre-assign dialogue voices.
func (s *Synthesizer) Voices() *VoicePicker {
	return s.voices
}

// Synthesize converts text to audio and returns the stored public URL. An
// empty URL with a nil error means both tiers failed; the caller may persist
// a script-only segment.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, profile domain.VoiceProfile) (string, error) {
	if s.tier1 != nil {
		voiceID := s.voices.Pick(profile)
		data, mimeType, err := s.tier1.Synthesize(ctx, text, voiceID)
		if err == nil {
			payload, ext, contentType, cErr := normalizeContainer(data, mimeType)
			if cErr == nil {
				return s.persist(ctx, text, payload, ext, contentType)
			}
			err = cErr
		}
		slog.Warn("tier-1 synthesis failed, trying tier 2", "error", err)
	}

	return s.synthesizeTier2(ctx, text, profile)
}

// SynthesizeDuo issues one multi-speaker Tier-1 call covering all turns. When
// the turns are empty or the call fails it falls back to single-speaker
// synthesis of the raw script under the primary profile; never a hard failure
// short of storage errors.
func (s *Synthesizer) SynthesizeDuo(ctx context.Context, turns []domain.DialogueTurn, rawScript string, primary domain.VoiceProfile) (string, error) {
	if s.tier1 == nil || len(turns) == 0 {
		return s.Synthesize(ctx, rawScript, primary)
	}

	text, speakers := serializeTurns(turns)

	data, mimeType, err := s.tier1.SynthesizeMultiSpeaker(ctx, text, speakers)
	if err == nil {
		payload, ext, contentType, cErr := normalizeContainer(data, mimeType)
		if cErr == nil {
			return s.persist(ctx, text, payload, ext, contentType)
		}
		err = cErr
	}

	slog.Warn("multi-speaker synthesis failed, falling back to single speaker", "error", err)
	return s.Synthesize(ctx, rawScript, primary)
}

func (s *Synthesizer) synthesizeTier2(ctx context.Context, text string, profile domain.VoiceProfile) (string, error) {
	if s.tier2 == nil {
		return "", nil
	}

	// Tier 2 has no notion of emotional markup
	data, err := s.tier2.Synthesize(ctx, StripEmotionTags(text), profile)
	if err != nil {
		slog.Warn("tier-2 synthesis failed, returning script-only result", "error", err)
		return "", nil
	}

	return s.persist(ctx, text, data, "mp3", "audio/mpeg")
}

// persist writes the audio to durable storage and returns the public URL.
// Storage failures propagate: the overall generation call must fail rather
// than report a URL that was never written.
func (s *Synthesizer) persist(ctx context.Context, text string, data []byte, ext, contentType string) (string, error) {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", text, s.now().UnixNano())))
	objectName := fmt.Sprintf("breaks/%s.%s", hex.EncodeToString(sum[:])[:16], ext)

	url, err := s.store.Upload(ctx, objectName, data, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to store audio: %w", err)
	}
	return url, nil
}

// serializeTurns flattens dialogue turns into the speaker-tagged script shape
// the Tier-1 backend expects, one "tag: utterance" pair per turn.
func serializeTurns(turns []domain.DialogueTurn) (string, []SpeakerVoice) {
	tags := make(map[string]string)
	var speakers []SpeakerVoice
	var lines []string

	for _, turn := range turns {
		tag, ok := tags[turn.VoiceID]
		if !ok {
			tag = fmt.Sprintf("Speaker%d", len(tags)+1)
			tags[turn.VoiceID] = tag
			speakers = append(speakers, SpeakerVoice{Speaker: tag, VoiceID: turn.VoiceID})
		}
		lines = append(lines, fmt.Sprintf("%s: %s", tag, turn.Text))
	}

	return strings.Join(lines, "\n"), speakers
}

var (
	emotionTagRe = regexp.MustCompile(`\[[^\]]*\]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	l16RateRe    = regexp.MustCompile(`rate=(\d+)`)
)

// StripEmotionTags removes [bracket] emotion cues for backends that would
// read them aloud.
func StripEmotionTags(text string) string {
	text = emotionTagRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// normalizeContainer maps Tier-1 response bytes to a storable payload. MP3
// and OGG pass through; raw 16-bit linear PCM is wrapped in a WAV header at
// the sample rate embedded in the MIME type.
func normalizeContainer(data []byte, mimeType string) (payload []byte, ext, contentType string, err error) {
	lower := strings.ToLower(mimeType)

	switch {
	case strings.Contains(lower, "audio/mpeg"), strings.Contains(lower, "audio/mp3"):
		return data, "mp3", "audio/mpeg", nil
	case strings.Contains(lower, "ogg"):
		return data, "ogg", "audio/ogg", nil
	case strings.HasPrefix(lower, "audio/l16"):
		rate := 24000
		if m := l16RateRe.FindStringSubmatch(lower); m != nil {
			if parsed, pErr := strconv.Atoi(m[1]); pErr == nil {
				rate = parsed
			}
		}
		return audio.PCMToWAV(data, rate, 1, 16), "wav", "audio/wav", nil
	default:
		return nil, "", "", fmt.Errorf("unsupported audio mime type: %s", mimeType)
	}
}
