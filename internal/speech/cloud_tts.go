package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/godlykids/radio-engine/internal/domain"
)

const defaultCloudTTSEndpoint = "https://texttospeech.googleapis.com/v1"

// CloudTTSClient is the Tier-2 speech backend: a conventional single-voice
// synthesis API with no notion of emotional markup or multiple speakers.
type CloudTTSClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewCloudTTSClient creates a Tier-2 client. The API key is read from the
// GOOGLE_TTS_API_KEY environment variable.
func NewCloudTTSClient() *CloudTTSClient {
	return &CloudTTSClient{
		apiKey:     os.Getenv("GOOGLE_TTS_API_KEY"),
		endpoint:   defaultCloudTTSEndpoint,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type cloudTTSRequest struct {
	Input       cloudTTSInput  `json:"input"`
	Voice       cloudTTSVoice  `json:"voice"`
	AudioConfig cloudTTSConfig `json:"audioConfig"`
}

type cloudTTSInput struct {
	Text string `json:"text"`
}

type cloudTTSVoice struct {
	LanguageCode string `json:"languageCode"`
	SSMLGender   string `json:"ssmlGender"`
}

type cloudTTSConfig struct {
	AudioEncoding string  `json:"audioEncoding"`
	Pitch         float64 `json:"pitch,omitempty"`
	SpeakingRate  float64 `json:"speakingRate,omitempty"`
}

type cloudTTSResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize converts plain text to MP3 bytes using the profile's language,
// gender, pitch and speaking rate. The text must not contain emotion markup.
func (c *CloudTTSClient) Synthesize(ctx context.Context, text string, profile domain.VoiceProfile) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("cloud tts api key is not configured")
	}

	languageCode := profile.LanguageCode
	if languageCode == "" {
		languageCode = "en-US"
	}

	payload := cloudTTSRequest{
		Input: cloudTTSInput{Text: text},
		Voice: cloudTTSVoice{
			LanguageCode: languageCode,
			SSMLGender:   strings.ToUpper(profile.Gender),
		},
		AudioConfig: cloudTTSConfig{
			AudioEncoding: "MP3",
			Pitch:         profile.Pitch,
			SpeakingRate:  profile.SpeakingRate,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/text:synthesize?key=%s", c.endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloud tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cloud tts request failed with status: %d", resp.StatusCode)
	}

	var decoded cloudTTSResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode cloud tts response: %w", err)
	}

	if decoded.AudioContent == "" {
		return nil, fmt.Errorf("cloud tts response contained no audio")
	}

	audio, err := base64.StdEncoding.DecodeString(decoded.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio payload: %w", err)
	}

	return audio, nil
}
