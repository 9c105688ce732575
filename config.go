package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/erikbos/jellymirror-server/database/sqlite"
)

type cfgMain struct {
	Listen   cfgListen         `mapstructure:"listen"`
	Cachedir string            `mapstructure:"cachedir"`
	Logfile  string            `mapstructure:"logfile"`
	Database sqlite.ConfigFile `mapstructure:"database"`
	Jellyfin cfgJellyfin       `mapstructure:"jellyfin"`
	Sync     cfgSync           `mapstructure:"sync"`
	API      cfgAPI            `mapstructure:"api"`
}

type cfgListen struct {
	Port    int    `mapstructure:"port"`
	TlsCert string `mapstructure:"tlscert"`
	TlsKey  string `mapstructure:"tlskey"`
}

type cfgJellyfin struct {
	// URL of the remote server we mirror
	URL string `mapstructure:"url"`
	// APIKey to authenticate against the remote server
	APIKey string `mapstructure:"apikey"`
	// Accept self-signed certificates of the remote server
	InsecureSkipVerify bool `mapstructure:"insecureskipverify"`
	// Items per page when walking remote collections
	PageSize int `mapstructure:"pagesize"`
	// JPEG quality of proxied poster images
	ImageQualityPoster int `mapstructure:"imagequalityposter"`
}

type cfgSync struct {
	// Interval between scheduled full syncs, zero disables the scheduler
	Interval time.Duration `mapstructure:"interval"`
	// Library IDs that are never mirrored
	ExcludedLibraries []string `mapstructure:"excludedlibraries"`
	// Pinned acting user for remote calls that need a user context
	PreferredAdminID string `mapstructure:"preferredadminid"`
}

type cfgAPI struct {
	// Bcrypt hash of the secret required on all endpoints, empty disables auth
	SecretHash string `mapstructure:"secrethash"`
}

// loadConfiguration reads the config file and applies flag and environment
// overrides. Environment variables use the JELLYMIRROR_ prefix, nested keys
// joined by underscores.
func loadConfiguration() (*cfgMain, error) {
	configFile := pflag.StringP("config", "c", "jellymirror-server.yaml",
		"Path of configuration file")
	logFile := pflag.String("logfile", "",
		"Path of logfile. Use 'stdout' for standard output or 'none' to disable logging.")
	pflag.Parse()

	v := viper.New()
	v.SetConfigFile(*configFile)
	v.SetEnvPrefix("JELLYMIRROR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen.port", 8096)
	v.SetDefault("database.filename", "jellymirror.db")
	v.SetDefault("sync.interval", time.Hour)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config cfgMain
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if *logFile != "" {
		config.Logfile = *logFile
	}
	return &config, nil
}
