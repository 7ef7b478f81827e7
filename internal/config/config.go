package config

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
)

const (
	BackendFirestore = "firestore"
	BackendMemory    = "memory"

	ProviderGPT    = "gpt"
	ProviderGemini = "gemini"
)

type GilasAI struct {
	ApiKey string `env:"GILAS_API_KEY"`
	ApiUrl string `env:"GILAS_API_URL" envDefault:"https://api.gilas.io/v1/chat/completions"`
	Model  string `env:"GILAS_GPT_MODEL" envDefault:"gpt-3.5-turbo"`
}

type Gemini struct {
	ApiKey string `env:"GEMINI_API_KEY"`
	Model  string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
}

type Copy struct {
	Provider    string `env:"COPY_PROVIDER" envDefault:"gpt"`
	TokenBudget int    `env:"COPY_TOKEN_BUDGET" envDefault:"1500"`
}

type Firebase struct {
	Type                    string        `env:"FIREBASE_TYPE" json:"type"`
	ProjectId               string        `env:"FIREBASE_PROJECT_ID" json:"project_id"`
	PrivateKeyId            string        `env:"FIREBASE_PRIVATE_KEY_ID" json:"private_key_id"`
	PrivateKey              string        `env:"FIREBASE_PRIVATE_KEY" json:"private_key"`
	ClientEmail             string        `env:"FIREBASE_CLIENT_EMAIL" json:"client_email"`
	ClientId                string        `env:"FIREBASE_CLIENT_ID" json:"client_id"`
	AuthUri                 string        `env:"FIREBASE_AUTH_URI" json:"auth_uri"`
	TokenUri                string        `env:"FIREBASE_TOKEN_URI" json:"token_uri"`
	AuthProviderX509CertUrl string        `env:"FIREBASE_AUTH_PROVIDER_X509_CERT_URL" json:"auth_provider_x509_cert_url"`
	ClientX509CertUrl       string        `env:"FIREBASE_CLIENT_X509_CERT_URL" json:"client_x509_cert_url"`
	StorageBucket           string        `env:"FIREBASE_STORAGE_BUCKET" json:"-"`
	WriteTimeout            time.Duration `env:"FIREBASE_WRITE_TIMEOUT" envDefault:"30s" json:"-"`
}

type Sync struct {
	Backend              string        `env:"SYNC_BACKEND" envDefault:"firestore"`
	FirstSnapshotTimeout time.Duration `env:"SYNC_FIRST_SNAPSHOT_TIMEOUT" envDefault:"5s"`
	RollbackOnFailure    bool          `env:"SYNC_ROLLBACK_ON_FAILURE" envDefault:"true"`
}

type Admin struct {
	Password string `env:"ADMIN_PASSWORD" envDefault:"1996"`
}

type App struct {
	Language string `env:"APP_LANGUAGE" envDefault:"es"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type Config struct {
	GilasAI
	Gemini
	Copy
	Firebase
	Sync
	Admin
	App
}

func LoadConfigOrPanic() Config {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	var config *Config = new(Config)
	if err := env.Parse(config); err != nil {
		panic(err)
	}

	config.normalize()
	return *config
}

func (c *Config) normalize() {

	if c.Firebase.PrivateKey != "" {
		decodedBytes, err := base64.StdEncoding.DecodeString(c.Firebase.PrivateKey)
		if err != nil {
			panic(err)
		}
		c.Firebase.PrivateKey = string(decodedBytes)
		c.Firebase.PrivateKey = strings.ReplaceAll(c.Firebase.PrivateKey, "\\n", "\n")
	}

	if c.WriteTimeout <= 0 {
		c.WriteTimeout = time.Second * 30
	}

	if c.FirstSnapshotTimeout <= 0 {
		c.FirstSnapshotTimeout = time.Second * 5
	}

	if c.Language != "en" {
		c.Language = "es"
	}

	if c.Sync.Backend != BackendMemory {
		c.Sync.Backend = BackendFirestore
	}

	if c.Copy.Provider != ProviderGemini {
		c.Copy.Provider = ProviderGPT
	}
}
