package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	StorePath      string        `yaml:"store_path"`
	LogLevel       string        `yaml:"log_level"`
	LogJSON        bool          `yaml:"log_json"`
	RefreshRate    time.Duration `yaml:"refresh_rate"`     // default per-board poll interval
	ThreadsPerPage int           `yaml:"threads_per_page"` // default when a board carries no threadsperpage option
	PostsPerPage   int           `yaml:"posts_per_page"`
}

type Private struct {
	// Base64 AES-256 key; empty means derive one from Passphrase.
	EncryptionKey string `yaml:"encryption_key"`
	Passphrase    string `yaml:"passphrase"`
}

func (c *Config) EncryptionKey() string {
	return c.private.EncryptionKey
}

func (c *Config) Passphrase() string {
	return c.private.Passphrase
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.applyDefaults()
	return cfg
}

// Default returns a config suitable for tests and tools that have no
// config folder to load from.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Public.StorePath == "" {
		c.Public.StorePath = "owl.db"
	}
	if c.Public.LogLevel == "" {
		c.Public.LogLevel = "info"
	}
	if c.Public.RefreshRate <= 0 {
		c.Public.RefreshRate = 10 * time.Minute
	}
	if c.Public.ThreadsPerPage <= 0 {
		c.Public.ThreadsPerPage = 25
	}
	if c.Public.PostsPerPage <= 0 {
		c.Public.PostsPerPage = 10
	}
}
