package main

import (
	"flag"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/himanishpuri/SeqSETI/pkg/seqseti"
)

var (
	port           int
	dbPath         string
	workers        int
	allowedOrigins string
)

func init() {
	_ = godotenv.Load()

	flag.IntVar(&port, "port", getEnvIntOrDefault("SEQSETI_PORT", 8080), "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("SEQSETI_DB_PATH", "seqseti.sqlite3"), "Path to SQLite database")
	flag.IntVar(&workers, "workers", getEnvIntOrDefault("SEQSETI_WORKERS", runtime.NumCPU()), "Segments searched concurrently")
	flag.StringVar(&allowedOrigins, "origins", getEnvOrDefault("SEQSETI_ORIGINS", "*"), "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func main() {
	flag.Parse()

	// Parse allowed origins
	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	service, err := seqseti.NewService(
		seqseti.WithDBPath(dbPath),
		seqseti.WithWorkers(workers),
	)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		Workers:        workers,
		AllowedOrigins: origins,
	}

	server := NewServer(service, config)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
