// Package config exposes the environment-driven configuration of the
// doorwatch collector. All values have working defaults so the binary
// starts without any setup; a .env file in the working directory is
// honored when present.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("DW_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("DW_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("DW_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/doorwatch"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("DW_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

func GetListen() string {
	return os.Getenv("DW_LISTEN")
}

func GetPort() int {
	portStr := os.Getenv("DW_PORT")
	if portStr == "" {
		return 8080
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return 8080
	}
	return port
}

// GetTokenSecret returns the HS256 signing secret for issued tokens.
// The fallback is only acceptable for local development.
func GetTokenSecret() string {
	secret := os.Getenv("DW_JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	return secret
}

func GetAccessTokenTTL() time.Duration {
	return durationEnv("DW_TOKEN_TTL", 60*time.Minute)
}

func GetRefreshTokenTTL() time.Duration {
	return durationEnv("DW_REFRESH_TOKEN_TTL", 72*time.Hour)
}

// GetAdminUsername and GetAdminPassword configure the account seeded on
// first start when the user table is empty.
func GetAdminUsername() string {
	username := os.Getenv("DW_ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	return username
}

func GetAdminPassword() string {
	password := os.Getenv("DW_ADMIN_PASSWORD")
	if password == "" {
		password = "adminpw"
	}
	return password
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
