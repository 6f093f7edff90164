package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all workflow configuration.
type Config struct {
	// Identity service credentials and endpoints
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string

	// Local callback listener for the interactive login
	CallbackListenAddr string
	CallbackURL        string
	LoginTimeout       time.Duration

	// Execution service
	AdminBaseURL  string
	JobChannelURL string
	ActivityID    string
	OwnerName     string

	// SigningKey is the base64 Ed25519 private key used to sign activity
	// ids. A fresh key pair is generated when empty.
	SigningKey string

	// Object storage
	Bucket            string
	Region            string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	SignedURLTTL      time.Duration

	// Document hierarchy
	HierarchyBaseURL string
	ProjectID        string
	FolderID         string

	ResultExtension string
	ReportDir       string
}

// LoadConfig loads configuration from files and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envMappings := map[string]string{
		"ClientID":           "PLOTLINE_CLIENT_ID",
		"ClientSecret":       "PLOTLINE_CLIENT_SECRET",
		"AuthURL":            "PLOTLINE_AUTH_URL",
		"TokenURL":           "PLOTLINE_TOKEN_URL",
		"CallbackListenAddr": "PLOTLINE_CALLBACK_LISTEN_ADDR",
		"CallbackURL":        "PLOTLINE_CALLBACK_URL",
		"LoginTimeout":       "PLOTLINE_LOGIN_TIMEOUT",
		"AdminBaseURL":       "PLOTLINE_ADMIN_BASE_URL",
		"JobChannelURL":      "PLOTLINE_JOB_CHANNEL_URL",
		"ActivityID":         "PLOTLINE_ACTIVITY_ID",
		"OwnerName":          "PLOTLINE_OWNER_NAME",
		"SigningKey":         "PLOTLINE_SIGNING_KEY",
		"Bucket":             "PLOTLINE_BUCKET",
		"Region":             "PLOTLINE_REGION",
		"S3Endpoint":         "PLOTLINE_S3_ENDPOINT",
		"S3AccessKeyID":      "PLOTLINE_S3_ACCESS_KEY_ID",
		"S3SecretAccessKey":  "PLOTLINE_S3_SECRET_ACCESS_KEY",
		"SignedURLTTL":       "PLOTLINE_SIGNED_URL_TTL",
		"HierarchyBaseURL":   "PLOTLINE_HIERARCHY_BASE_URL",
		"ProjectID":          "PLOTLINE_PROJECT_ID",
		"FolderID":           "PLOTLINE_FOLDER_ID",
		"ResultExtension":    "PLOTLINE_RESULT_EXTENSION",
		"ReportDir":          "PLOTLINE_REPORT_DIR",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	v.SetConfigName("plotline_config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.plotline")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("CallbackListenAddr", "localhost:3006")
	v.SetDefault("CallbackURL", "http://localhost:3006/oauth")
	v.SetDefault("LoginTimeout", "5m")
	v.SetDefault("SignedURLTTL", "60s")
	v.SetDefault("Region", "us-east-1")
	v.SetDefault("ResultExtension", "pdf")
	v.SetDefault("ReportDir", ".")
	v.SetDefault("OwnerName", "plotline")
}

func validateConfig(config *Config) error {
	var missingVars []string

	if config.ClientID == "" {
		missingVars = append(missingVars, "PLOTLINE_CLIENT_ID")
	}
	if config.ClientSecret == "" {
		missingVars = append(missingVars, "PLOTLINE_CLIENT_SECRET")
	}
	if config.AuthURL == "" {
		missingVars = append(missingVars, "PLOTLINE_AUTH_URL")
	}
	if config.TokenURL == "" {
		missingVars = append(missingVars, "PLOTLINE_TOKEN_URL")
	}
	if config.HierarchyBaseURL == "" {
		missingVars = append(missingVars, "PLOTLINE_HIERARCHY_BASE_URL")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %s",
			strings.Join(missingVars, ", "))
	}

	return nil
}

// validateRunConfig checks the fields only the run command needs, so login
// and tree work with a minimal configuration.
func validateRunConfig(config *Config) error {
	var missingVars []string

	if config.AdminBaseURL == "" {
		missingVars = append(missingVars, "PLOTLINE_ADMIN_BASE_URL")
	}
	if config.JobChannelURL == "" {
		missingVars = append(missingVars, "PLOTLINE_JOB_CHANNEL_URL")
	}
	if config.ActivityID == "" {
		missingVars = append(missingVars, "PLOTLINE_ACTIVITY_ID")
	}
	if config.Bucket == "" {
		missingVars = append(missingVars, "PLOTLINE_BUCKET")
	}
	if config.ProjectID == "" {
		missingVars = append(missingVars, "PLOTLINE_PROJECT_ID")
	}
	if config.FolderID == "" {
		missingVars = append(missingVars, "PLOTLINE_FOLDER_ID")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %s",
			strings.Join(missingVars, ", "))
	}

	return nil
}
