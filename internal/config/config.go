// Package config loads runtime settings from the environment and an
// optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage modes.
const (
	PrimarySQL      = "sql"
	PrimaryDocument = "document"
	PrimaryMemory   = "memory"

	DocumentNone      = "none"
	DocumentFirestore = "firestore"
	DocumentBolt      = "bolt"

	AuthLocal    = "local"
	AuthFirebase = "firebase"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Firebase FirebaseConfig
	Captcha  CaptchaConfig
	RabbitMQ RabbitMQConfig
	Paths    PathsConfig
	Log      LogConfig
	SMTP     SMTPConfig
}

type AppConfig struct {
	Port    string
	BaseURL string
}

type DatabaseConfig struct {
	Type string // sqlite, postgres or mysql
	DSN  string
}

type StorageConfig struct {
	Primary       string
	DocumentStore string
	BoltPath      string
	MirrorEnabled bool
	MirrorWorkers int
	MirrorTimeout time.Duration
}

type AuthConfig struct {
	Strategy  string
	JWTSecret string
	TokenTTL  time.Duration
}

type FirebaseConfig struct {
	CredentialsFile   string
	ProjectID         string
	APIKey            string
	AuthDomain        string
	StorageBucket     string
	MessagingSenderID string
	AppID             string
}

type CaptchaConfig struct {
	Secret    string
	VerifyURL string
}

type RabbitMQConfig struct {
	URL string // empty disables catalog events
}

type PathsConfig struct {
	UploadsDir   string
	StaticDir    string
	TemplatesDir string
}

type LogConfig struct {
	Mode string // development or production
	File string // rotated log file; empty logs to stdout only
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// MirrorsToDocument reports whether SQL writes are copied to the document store.
func (c *Config) MirrorsToDocument() bool {
	return c.Storage.Primary == PrimarySQL &&
		c.Storage.DocumentStore != DocumentNone &&
		c.Storage.MirrorEnabled
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":3000")
	v.SetDefault("APP_BASE_URL", "http://localhost:3000")

	v.SetDefault("DATABASE_TYPE", "sqlite")
	v.SetDefault("DATABASE_DSN", "mixmodas.db")

	v.SetDefault("STORAGE_PRIMARY", PrimarySQL)
	v.SetDefault("DOCUMENT_STORE", DocumentNone)
	v.SetDefault("BOLT_PATH", "mixmodas.bolt")
	v.SetDefault("MIRROR_ENABLED", true)
	v.SetDefault("MIRROR_WORKERS", 4)
	v.SetDefault("MIRROR_TIMEOUT", "10s")

	v.SetDefault("AUTH_STRATEGY", AuthLocal)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "24h")

	v.SetDefault("FIREBASE_CREDENTIALS", "")
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_API_KEY", "")
	v.SetDefault("FIREBASE_AUTH_DOMAIN", "")
	v.SetDefault("FIREBASE_STORAGE_BUCKET", "")
	v.SetDefault("FIREBASE_MESSAGING_SENDER_ID", "")
	v.SetDefault("FIREBASE_APP_ID", "")

	v.SetDefault("CAPTCHA_SECRET", "")
	v.SetDefault("CAPTCHA_VERIFY_URL", "")

	v.SetDefault("RABBITMQ_URL", "")

	v.SetDefault("UPLOADS_DIR", "uploads")
	v.SetDefault("STATIC_DIR", "static")
	v.SetDefault("TEMPLATES_DIR", "templates")

	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("LOG_FILE", "")

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")
}

// Load reads defaults, then configFile (when not empty), then environment
// variables, which win.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv() // Load environment variables

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Port:    v.GetString("APP_PORT"),
			BaseURL: strings.TrimRight(v.GetString("APP_BASE_URL"), "/"),
		},
		Database: DatabaseConfig{
			Type: strings.ToLower(v.GetString("DATABASE_TYPE")),
			DSN:  v.GetString("DATABASE_DSN"),
		},
		Storage: StorageConfig{
			Primary:       strings.ToLower(v.GetString("STORAGE_PRIMARY")),
			DocumentStore: strings.ToLower(v.GetString("DOCUMENT_STORE")),
			BoltPath:      v.GetString("BOLT_PATH"),
			MirrorEnabled: v.GetBool("MIRROR_ENABLED"),
			MirrorWorkers: v.GetInt("MIRROR_WORKERS"),
			MirrorTimeout: v.GetDuration("MIRROR_TIMEOUT"),
		},
		Auth: AuthConfig{
			Strategy:  strings.ToLower(v.GetString("AUTH_STRATEGY")),
			JWTSecret: v.GetString("JWT_SECRET"),
			TokenTTL:  v.GetDuration("TOKEN_TTL"),
		},
		Firebase: FirebaseConfig{
			CredentialsFile:   v.GetString("FIREBASE_CREDENTIALS"),
			ProjectID:         v.GetString("FIREBASE_PROJECT_ID"),
			APIKey:            v.GetString("FIREBASE_API_KEY"),
			AuthDomain:        v.GetString("FIREBASE_AUTH_DOMAIN"),
			StorageBucket:     v.GetString("FIREBASE_STORAGE_BUCKET"),
			MessagingSenderID: v.GetString("FIREBASE_MESSAGING_SENDER_ID"),
			AppID:             v.GetString("FIREBASE_APP_ID"),
		},
		Captcha: CaptchaConfig{
			Secret:    v.GetString("CAPTCHA_SECRET"),
			VerifyURL: v.GetString("CAPTCHA_VERIFY_URL"),
		},
		RabbitMQ: RabbitMQConfig{
			URL: v.GetString("RABBITMQ_URL"),
		},
		Paths: PathsConfig{
			UploadsDir:   v.GetString("UPLOADS_DIR"),
			StaticDir:    v.GetString("STATIC_DIR"),
			TemplatesDir: v.GetString("TEMPLATES_DIR"),
		},
		Log: LogConfig{
			Mode: strings.ToLower(v.GetString("LOG_MODE")),
			File: v.GetString("LOG_FILE"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown modes and incomplete combinations.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("DATABASE_TYPE must be sqlite, postgres or mysql, got %q", c.Database.Type)
	}
	switch c.Storage.Primary {
	case PrimarySQL, PrimaryDocument, PrimaryMemory:
	default:
		return fmt.Errorf("STORAGE_PRIMARY must be sql, document or memory, got %q", c.Storage.Primary)
	}
	switch c.Storage.DocumentStore {
	case DocumentNone, DocumentFirestore, DocumentBolt:
	default:
		return fmt.Errorf("DOCUMENT_STORE must be none, firestore or bolt, got %q", c.Storage.DocumentStore)
	}
	if c.Storage.Primary == PrimaryDocument && c.Storage.DocumentStore == DocumentNone {
		return fmt.Errorf("STORAGE_PRIMARY=document requires DOCUMENT_STORE to be firestore or bolt")
	}
	switch c.Auth.Strategy {
	case AuthLocal:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required with AUTH_STRATEGY=local")
		}
	case AuthFirebase:
		if c.Firebase.APIKey == "" {
			return fmt.Errorf("FIREBASE_API_KEY is required with AUTH_STRATEGY=firebase")
		}
	default:
		return fmt.Errorf("AUTH_STRATEGY must be local or firebase, got %q", c.Auth.Strategy)
	}
	if c.Storage.MirrorWorkers <= 0 {
		return fmt.Errorf("MIRROR_WORKERS must be positive")
	}
	return nil
}
