package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime settings. It is built once in main and passed by
// reference into each component; nothing reads the environment after Load.
type Config struct {
	MongoURI string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDB  string `envconfig:"MONGODB_DB" default:"auranotes"`

	SessionSecret string `envconfig:"SESSION_SECRET" default:"change-me-in-production"`

	UploadDir      string `envconfig:"UPLOAD_DIR" default:"uploads"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" default:"16777216"`

	// Port may be left empty: the effective port then depends on whether TLS
	// material is available (443 with TLS, 80 without).
	Port        string `envconfig:"PORT"`
	TLSCertFile string `envconfig:"TLS_CERT_FILE"`
	TLSKeyFile  string `envconfig:"TLS_KEY_FILE"`

	SpeechAPIURL  string `envconfig:"SPEECH_API_URL" default:"http://www.google.com/speech-api/v2/recognize"`
	SpeechAPIKey  string `envconfig:"SPEECH_API_KEY"`
	SpeechAPILang string `envconfig:"SPEECH_API_LANG" default:"en-US"`
	FFmpegPath    string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
}

func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// TLSEnabled reports whether both the certificate and key are configured and
// actually present on disk.
func (c *Config) TLSEnabled() bool {
	if c.TLSCertFile == "" || c.TLSKeyFile == "" {
		return false
	}
	if _, err := os.Stat(c.TLSCertFile); err != nil {
		return false
	}
	if _, err := os.Stat(c.TLSKeyFile); err != nil {
		return false
	}
	return true
}

// Addr returns the listen address, applying the TLS-dependent port default.
func (c *Config) Addr() string {
	port := c.Port
	if port == "" {
		if c.TLSEnabled() {
			port = "443"
		} else {
			port = "80"
		}
	}
	return ":" + port
}
