//go:build !js && !wasm
// +build !js,!wasm
package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/landmarkfp/acousticdna/internal/config"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/fingerprint"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/index"
)

var (
	port           int
	dbPath         string
	tempDir        string
	sampleRate     int
	allowedOrigins string
	configPath     string
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("ACOUSTIC_DB_PATH", "acousticdna.sqlite3"), "Path to SQLite database")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("ACOUSTIC_TEMP_DIR", "/tmp"), "Temporary directory")
	flag.IntVar(&sampleRate, "rate", 11025, "Audio sample rate")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
	flag.StringVar(&configPath, "config", "", "Path to a YAML config file (overrides individual flags when set)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()

	params := fingerprint.DefaultParams()
	if configPath != "" {
		cfgFile, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		params = cfgFile.Params()
		if cfgFile.DBPath != "" {
			dbPath = cfgFile.DBPath
		}
		if cfgFile.TempDir != "" {
			tempDir = cfgFile.TempDir
		}
	} else {
		params.SampleRate = sampleRate
	}

	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	idx, err := index.NewSQLiteIndex(dbPath)
	if err != nil {
		log.Fatalf("failed to open index: %v", err)
	}

	svc, err := acousticdna.NewService(
		acousticdna.WithIndex(idx),
		acousticdna.WithTempDir(tempDir),
		acousticdna.WithParams(params),
	)
	if err != nil {
		log.Fatalf("failed to create service: %v", err)
	}
	defer svc.Close()

	serverConfig := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		TempDir:        tempDir,
		SampleRate:     params.SampleRate,
		AllowedOrigins: origins,
	}

	server := NewServer(svc, idx, params, serverConfig)
	if err := server.Start(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
