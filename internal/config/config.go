// Package config содержит логику чтения конфигурации сервиса вафельной.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	defaultRunAddress = ":5000"
	defaultStaticDir  = "public"
)

// Config содержит параметры конфигурации сервиса.
type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseURI   string `env:"DATABASE_URI"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	StaticDir     string `env:"STATIC_DIR"`

	// Учётная запись администратора, создаваемая при старте, если её ещё нет.
	AdminUsername     string `env:"ADMIN_USERNAME"`
	AdminPhone        string `env:"ADMIN_PHONE"`
	AdminUserPassword string `env:"ADMIN_USER_PASSWORD"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Значения из окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envAdminPassword := cfg.AdminPassword
	envStaticDir := cfg.StaticDir

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI, in-memory store when empty")
	flag.StringVar(&cfg.AdminPassword, "p", "", "admin password for admin-gated endpoints")
	flag.StringVar(&cfg.StaticDir, "s", defaultStaticDir, "directory with front-end static files")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envAdminPassword != "" {
		cfg.AdminPassword = envAdminPassword
	}
	if envStaticDir != "" {
		cfg.StaticDir = envStaticDir
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = defaultStaticDir
	}

	return cfg, nil
}

// SeedAdmin сообщает, нужно ли создавать учётную запись администратора при старте.
func (c *Config) SeedAdmin() bool {
	return c.AdminUsername != "" && c.AdminPhone != "" && c.AdminUserPassword != ""
}
