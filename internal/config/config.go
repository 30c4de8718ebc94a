package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	EmbedLLM LLMConfig      `yaml:"embedding"`
	Store    StoreConfig    `yaml:"store"`
	Ingest   IngestConfig   `yaml:"ingest"`
}

type DatabaseConfig struct {
	URL   string `yaml:"url"`
	Debug bool   `yaml:"debug"`
}

type LLMConfig struct {
	BaseURL           string  `yaml:"base_url"`
	APIKey            string  `yaml:"api_key"`
	Model             string  `yaml:"model"`
	MaxRetries        uint64  `yaml:"max_retries"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type StoreConfig struct {
	// Backend selects the vector store: "postgres" or "chromem".
	Backend string `yaml:"backend"`
	// Path is the on-disk location of the chromem database.
	Path string `yaml:"path"`
}

type IngestConfig struct {
	Workers      int `yaml:"workers"`
	MaxChunkSize int `yaml:"max_chunk_size"`
	MinChunkSize int `yaml:"min_chunk_size"`
}

const (
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultStoreBackend   = "postgres"
	defaultChromemPath    = "./chromemdb"
	defaultMaxRetries     = 3
	defaultRPS            = 5.0
	defaultBurst          = 5
	defaultWorkers        = 4
)

// LoadConfig reads the YAML config at path and applies environment
// overrides for the secrets. A .env file next to the process is honoured
// before the environment is read.
func LoadConfig(path string) (*Config, error) {
	// missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.EmbedLLM.Model == "" {
		c.EmbedLLM.Model = defaultEmbeddingModel
	}
	if c.EmbedLLM.MaxRetries == 0 {
		c.EmbedLLM.MaxRetries = defaultMaxRetries
	}
	if c.EmbedLLM.RequestsPerSecond == 0 {
		c.EmbedLLM.RequestsPerSecond = defaultRPS
	}
	if c.EmbedLLM.Burst == 0 {
		c.EmbedLLM.Burst = defaultBurst
	}
	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	if c.Store.Path == "" {
		c.Store.Path = defaultChromemPath
	}
	if c.Ingest.Workers == 0 {
		c.Ingest.Workers = defaultWorkers
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.EmbedLLM.APIKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
}
