package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings are fixed for the life of the process. Anything an admin can
// change at runtime lives in Runtime instead.
type Settings struct {
	Port string `yaml:"port"`

	PollInterval     time.Duration `yaml:"poll_interval"`
	HistoryCapacity  int           `yaml:"history_capacity"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout"`
	PauseDuringNudge bool          `yaml:"pause_during_nudge"`

	ClassifierBaseURL string        `yaml:"classifier_base_url"`
	ClassifierAPIKey  string        `yaml:"-"`
	PrimaryModel      string        `yaml:"primary_model"`
	FallbackModel     string        `yaml:"fallback_model"`
	ClassifyTimeout   time.Duration `yaml:"classify_timeout"`

	LocalBaseURL string `yaml:"local_base_url"`
	LocalModel   string `yaml:"local_model"`

	TTSAPIKey  string        `yaml:"-"`
	TTSVoiceID string        `yaml:"tts_voice_id"`
	TTSModel   string        `yaml:"tts_model"`
	TTSTimeout time.Duration `yaml:"tts_timeout"`

	PhraseCacheSize     int     `yaml:"phrase_cache_size"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	SupabaseURL string `yaml:"-"`
	SupabaseKey string `yaml:"-"`

	MockMode bool `yaml:"mock_mode"`
}

// DefaultSettings mirrors the values the sidecar has always shipped with.
func DefaultSettings() Settings {
	return Settings{
		Port:                "8765",
		PollInterval:        time.Second,
		HistoryCapacity:     1800,
		ProbeTimeout:        2 * time.Second,
		PauseDuringNudge:    true,
		ClassifierBaseURL:   "https://api.mistral.ai/v1/",
		PrimaryModel:        "mistral-large-latest",
		FallbackModel:       "mistral-small-latest",
		ClassifyTimeout:     15 * time.Second,
		LocalBaseURL:        "http://localhost:11434",
		LocalModel:          "mistral:7b-instruct",
		TTSVoiceID:          "EXAVITQu4vr4xnSDxMaL",
		TTSModel:            "eleven_turbo_v2",
		TTSTimeout:          10 * time.Second,
		PhraseCacheSize:     20,
		ConfidenceThreshold: 0.75,
	}
}

// LoadSettings layers defaults, the optional YAML file named by
// NUDGE_SETTINGS_FILE, and finally environment variables.
func LoadSettings() (Settings, error) {
	s := DefaultSettings()

	if path := os.Getenv("NUDGE_SETTINGS_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("failed to read settings file: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("failed to parse settings file %s: %w", path, err)
		}
	}

	if err := applyEnv(&s, os.Getenv); err != nil {
		return s, err
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func applyEnv(s *Settings, getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setString("SIDECAR_PORT", &s.Port)
	setString("MISTRAL_BASE_URL", &s.ClassifierBaseURL)
	setString("MISTRAL_API_KEY", &s.ClassifierAPIKey)
	setString("PRIMARY_MODEL", &s.PrimaryModel)
	setString("FALLBACK_MODEL", &s.FallbackModel)
	setString("OLLAMA_BASE_URL", &s.LocalBaseURL)
	setString("LOCAL_MODEL", &s.LocalModel)
	setString("ELEVENLABS_API_KEY", &s.TTSAPIKey)
	setString("ELEVENLABS_VOICE_ID", &s.TTSVoiceID)
	setString("SUPABASE_URL", &s.SupabaseURL)
	setString("SUPABASE_KEY", &s.SupabaseKey)
	if s.SupabaseKey == "" {
		setString("SUPABASE_SERVICE_ROLE_KEY", &s.SupabaseKey)
	}

	durations := map[string]*time.Duration{
		"POLL_INTERVAL":    &s.PollInterval,
		"PROBE_TIMEOUT":    &s.ProbeTimeout,
		"CLASSIFY_TIMEOUT": &s.ClassifyTimeout,
		"TTS_TIMEOUT":      &s.TTSTimeout,
	}
	for key, dst := range durations {
		if v := getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"HISTORY_CAPACITY":  &s.HistoryCapacity,
		"PHRASE_CACHE_SIZE": &s.PhraseCacheSize,
	}
	for key, dst := range ints {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"MOCK_MODE":          &s.MockMode,
		"PAUSE_DURING_NUDGE": &s.PauseDuringNudge,
	}
	for key, dst := range bools {
		if v := getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = b
		}
	}

	return nil
}

// Validate rejects settings the core cannot run with.
func (s Settings) Validate() error {
	if s.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", s.PollInterval)
	}
	if s.HistoryCapacity <= 0 {
		return fmt.Errorf("history capacity must be positive, got %d", s.HistoryCapacity)
	}
	if s.PhraseCacheSize <= 0 {
		return fmt.Errorf("phrase cache size must be positive, got %d", s.PhraseCacheSize)
	}
	if s.ConfidenceThreshold < 0 || s.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be within [0,1], got %v", s.ConfidenceThreshold)
	}
	if s.ProbeTimeout <= 0 || s.ClassifyTimeout <= 0 || s.TTSTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}
