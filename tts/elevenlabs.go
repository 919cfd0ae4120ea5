// Package tts turns nudge text into spoken audio through ElevenLabs.
package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"clementus360/nudge-agent/config"

	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io"
	DefaultVoiceID = "EXAVITQu4vr4xnSDxMaL"
	DefaultModel   = "eleven_turbo_v2"
	DefaultTimeout = 10 * time.Second

	wordsPerMinute     = 150
	minSpokenDuration  = 1.5
	maxErrorBodyLength = 512
)

// SilentMP3 is played whenever synthesis is unavailable
const SilentMP3 = "SUQzBAAAAAAAI1RTU0UAAAAPAAADTGF2ZjU4Ljc2LjEwMAAAAAAAAAAAAAAA" +
	"//tQwAAAAAAAAAAAAAAAAAAAAAAAWGluZwAAAA8AAAABAAADhgD///////////////////" +
	"//////////////AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

var ErrNoAPIKey = errors.New("ELEVENLABS_API_KEY not set")

// Synthesizer is what the nudge pipeline needs from a speech backend.
// Implementations never fail outright: errors come back alongside the
// silent placeholder so callers can log them and carry on.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (audioBase64 string, durationSec float64, err error)
}

type ElevenLabs struct {
	baseURL string
	apiKey  string
	voiceID string
	model   string
	client  *http.Client
	mock    bool
}

type Option func(*ElevenLabs)

func WithBaseURL(u string) Option {
	return func(e *ElevenLabs) {
		e.baseURL = strings.TrimRight(u, "/")
	}
}

func WithVoice(voiceID string) Option {
	return func(e *ElevenLabs) {
		if voiceID != "" {
			e.voiceID = voiceID
		}
	}
}

func WithModel(model string) Option {
	return func(e *ElevenLabs) {
		if model != "" {
			e.model = model
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(e *ElevenLabs) {
		if d > 0 {
			e.client.Timeout = d
		}
	}
}

// WithMock makes every call return the silent placeholder without a request
func WithMock(mock bool) Option {
	return func(e *ElevenLabs) {
		e.mock = mock
	}
}

func NewElevenLabs(apiKey string, opts ...Option) *ElevenLabs {
	e := &ElevenLabs{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		voiceID: DefaultVoiceID,
		model:   DefaultModel,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func NewFromSettings(s config.Settings) *ElevenLabs {
	return NewElevenLabs(s.TTSAPIKey,
		WithVoice(s.TTSVoiceID),
		WithModel(s.TTSModel),
		WithTimeout(s.TTSTimeout),
		WithMock(s.MockMode),
	)
}

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func (e *ElevenLabs) Synthesize(ctx context.Context, text string) (string, float64, error) {
	if e.mock {
		return SilentMP3, 0, nil
	}
	if e.apiKey == "" {
		return SilentMP3, 0, ErrNoAPIKey
	}

	audio, err := e.fetch(ctx, text)
	if err != nil {
		config.Logger.WithFields(logrus.Fields{
			"voice": e.voiceID,
			"model": e.model,
		}).WithError(err).Warn("Speech synthesis failed, using silent audio")
		return SilentMP3, 0, err
	}

	return base64.StdEncoding.EncodeToString(audio), EstimateDuration(text), nil
}

func (e *ElevenLabs) fetch(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(speechRequest{
		Text:          text,
		ModelID:       e.model,
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.5},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, e.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("API returned empty audio")
	}
	return audio, nil
}

// EstimateDuration guesses speaking time at 150 words per minute, never
// below 1.5s, rounded to a tenth of a second.
func EstimateDuration(text string) float64 {
	words := len(strings.Fields(text))
	d := math.Max(minSpokenDuration, float64(words)/wordsPerMinute*60)
	return math.Round(d*10) / 10
}
