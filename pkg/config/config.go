// Package config reads application configuration from environment variables,
// an optional .env file and an optional config file, in that priority order.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config groups all application settings.
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Log       LogConfig
	Generator GeneratorConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig holds the API server settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// GeneratorConfig holds the document generation settings.
type GeneratorConfig struct {
	Profile         string   // basic, en16931, extended
	Rounding        string   // half-away-from-zero, half-even
	AllowedVATRates []string // empty accepts any non-negative rate
	CreatorTool     string
	Producer        string
	AttachmentName  string
	ICCProfilePath  string // path to an sRGB ICC profile; empty composes without one
	StrictArchival  bool   // refuse to compose without an ICC profile
}

// ICCProfile loads the configured color profile, or nil when none is set.
func (c GeneratorConfig) ICCProfile() ([]byte, error) {
	if c.ICCProfilePath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.ICCProfilePath)
	if err != nil {
		return nil, fmt.Errorf("read ICC profile %s: %w", c.ICCProfilePath, err)
	}
	return data, nil
}

// Load reads configuration. Environment variables win; a .env file in the
// working directory is loaded first so local development works without
// exporting anything.
func Load() (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // optional file

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "invoice-generator"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Log: LogConfig{
			Level: getString(v, "LOG_LEVEL", "info"),
		},
		Generator: GeneratorConfig{
			Profile:         getString(v, "INVOICE_PROFILE", "en16931"),
			Rounding:        getString(v, "INVOICE_ROUNDING", "half-away-from-zero"),
			AllowedVATRates: splitList(getString(v, "INVOICE_VAT_RATES", "")),
			CreatorTool:     getString(v, "INVOICE_CREATOR_TOOL", "invoice-generator"),
			Producer:        getString(v, "INVOICE_PRODUCER", "invoice-generator"),
			AttachmentName:  getString(v, "INVOICE_ATTACHMENT_NAME", "factur-x.xml"),
			ICCProfilePath:  getString(v, "INVOICE_ICC_PROFILE", ""),
			StrictArchival:  v.GetBool("INVOICE_STRICT_ARCHIVAL"),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		return v.GetInt(key)
	}
	return def
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
