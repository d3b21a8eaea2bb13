// Package config handles loading and parsing application configuration.
// It supports three sources, in priority order:
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//  3. Plain environment variables / built-in defaults, when no file is given
//
// cleanenv reads the YAML file and the env:"..." tagged environment
// variables into the same struct, so a containerised deployment can skip
// the file entirely and configure everything through the environment.
package config

import (
	"flag"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden by the
// corresponding environment variable.
type Config struct {
	// Env controls the log format and verbosity: "dev", "staging" or "prod".
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	// StoragePath is the filesystem path to the SQLite database file.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"data/registry.db"`

	// TemplateDir and StaticDir locate the browser client's assets.
	TemplateDir string `yaml:"template_dir" env:"TEMPLATE_DIR" env-default:"web/templates"`
	StaticDir   string `yaml:"static_dir" env:"STATIC_DIR" env-default:"web/static"`

	// HTTPServer is embedded so its fields are promoted onto Config.
	HTTPServer `yaml:"http_server"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:":8080"`
}

// MustLoad reads, validates, and returns the application config.
//
// The "Must" prefix follows the Go convention: this function exits the
// process on failure, so if it returns, the config is valid.
//
// Note: MustLoad registers the --config flag and calls flag.Parse(), so any
// other flags the binary wants must be registered BEFORE calling it.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	flagPath := flag.String("config", "", "Path to the configuration YAML file")
	flag.Parse()
	if *flagPath != "" {
		configPath = *flagPath
	}

	var cfg Config

	// No file given — fall back to environment variables and defaults.
	// This is the common path for local development and containers.
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from environment: %s", err.Error())
		}
		return &cfg
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}

	return &cfg
}
