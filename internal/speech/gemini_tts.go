package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultTTSEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	defaultTTSModel    = "gemini-2.5-flash-preview-tts"

	ttsScope = "https://www.googleapis.com/auth/cloud-platform"
)

// SpeakerVoice binds a speaker tag in a multi-speaker script to a prebuilt
// voice identifier.
type SpeakerVoice struct {
	Speaker string
	VoiceID string
}

// GeminiTTSClient is the Tier-1 speech backend. Requests are authenticated
// with short-lived access tokens exchanged from a service-account credential.
type GeminiTTSClient struct {
	tokenSource oauth2.TokenSource
	endpoint    string
	model       string
	httpClient  *http.Client
}

// NewGeminiTTSClient builds a Tier-1 client from a service-account JSON file.
func NewGeminiTTSClient(ctx context.Context, credentialsFile, model string) (*GeminiTTSClient, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("service account credentials file is required")
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, ttsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	if model == "" {
		model = defaultTTSModel
	}

	return &GeminiTTSClient{
		tokenSource: creds.TokenSource,
		endpoint:    defaultTTSEndpoint,
		model:       model,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

type ttsRequest struct {
	Contents         []ttsContent        `json:"contents"`
	GenerationConfig ttsGenerationConfig `json:"generationConfig"`
}

type ttsContent struct {
	Parts []ttsPart `json:"parts"`
}

type ttsPart struct {
	Text string `json:"text"`
}

type ttsGenerationConfig struct {
	ResponseModalities []string        `json:"responseModalities"`
	SpeechConfig       ttsSpeechConfig `json:"speechConfig"`
}

type ttsSpeechConfig struct {
	VoiceConfig             *ttsVoiceConfig        `json:"voiceConfig,omitempty"`
	MultiSpeakerVoiceConfig *ttsMultiSpeakerConfig `json:"multiSpeakerVoiceConfig,omitempty"`
}

type ttsVoiceConfig struct {
	PrebuiltVoiceConfig ttsPrebuiltVoice `json:"prebuiltVoiceConfig"`
}

type ttsPrebuiltVoice struct {
	VoiceName string `json:"voiceName"`
}

type ttsMultiSpeakerConfig struct {
	SpeakerVoiceConfigs []ttsSpeakerVoiceConfig `json:"speakerVoiceConfigs"`
}

type ttsSpeakerVoiceConfig struct {
	Speaker     string         `json:"speaker"`
	VoiceConfig ttsVoiceConfig `json:"voiceConfig"`
}

type ttsResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Synthesize converts text to audio with a single prebuilt voice. It returns
// the raw audio bytes and the MIME type they arrived with.
func (c *GeminiTTSClient) Synthesize(ctx context.Context, text, voiceID string) ([]byte, string, error) {
	req := ttsRequest{
		Contents: []ttsContent{{Parts: []ttsPart{{Text: text}}}},
		GenerationConfig: ttsGenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: ttsSpeechConfig{
				VoiceConfig: &ttsVoiceConfig{
					PrebuiltVoiceConfig: ttsPrebuiltVoice{VoiceName: voiceID},
				},
			},
		},
	}
	return c.call(ctx, req)
}

// SynthesizeMultiSpeaker converts a speaker-tagged script to audio in a single
// call covering all turns.
func (c *GeminiTTSClient) SynthesizeMultiSpeaker(ctx context.Context, text string, speakers []SpeakerVoice) ([]byte, string, error) {
	configs := make([]ttsSpeakerVoiceConfig, 0, len(speakers))
	for _, s := range speakers {
		configs = append(configs, ttsSpeakerVoiceConfig{
			Speaker: s.Speaker,
			VoiceConfig: ttsVoiceConfig{
				PrebuiltVoiceConfig: ttsPrebuiltVoice{VoiceName: s.VoiceID},
			},
		})
	}

	req := ttsRequest{
		Contents: []ttsContent{{Parts: []ttsPart{{Text: text}}}},
		GenerationConfig: ttsGenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: ttsSpeechConfig{
				MultiSpeakerVoiceConfig: &ttsMultiSpeakerConfig{SpeakerVoiceConfigs: configs},
			},
		},
	}
	return c.call(ctx, req)
}

func (c *GeminiTTSClient) call(ctx context.Context, payload ttsRequest) ([]byte, string, error) {
	token, err := c.tokenSource.Token()
	if err != nil {
		return nil, "", fmt.Errorf("failed to obtain access token: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("tts request failed with status: %d", resp.StatusCode)
	}

	var decoded ttsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, "", fmt.Errorf("failed to decode tts response: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return nil, "", fmt.Errorf("tts response contained no audio")
	}

	inline := decoded.Candidates[0].Content.Parts[0].InlineData
	if inline.Data == "" {
		return nil, "", fmt.Errorf("tts response contained empty audio payload")
	}

	audio, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode audio payload: %w", err)
	}

	return audio, inline.MimeType, nil
}
