package tests

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Layr-Labs/txguard/internal/config"
	"github.com/google/uuid"
)

// GetDbConfigFromEnv reads a postgres config from the TXGUARD_DATABASE_* variables. It returns nil
// when no host is set so callers can skip tests that need a live database.
func GetDbConfigFromEnv() *config.DatabaseConfig {
	host := os.Getenv("TXGUARD_DATABASE_HOST")
	if host == "" {
		return nil
	}
	port, err := strconv.Atoi(os.Getenv("TXGUARD_DATABASE_PORT"))
	if err != nil || port == 0 {
		port = 5432
	}
	return &config.DatabaseConfig{
		Enabled:  true,
		Host:     host,
		Port:     port,
		User:     os.Getenv("TXGUARD_DATABASE_USER"),
		Password: os.Getenv("TXGUARD_DATABASE_PASSWORD"),
		DbName:   os.Getenv("TXGUARD_DATABASE_DB_NAME"),
		SSLMode:  os.Getenv("TXGUARD_DATABASE_SSL_MODE"),
	}
}

func GenerateTestDbName() string {
	return fmt.Sprintf("txguard_test_%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
