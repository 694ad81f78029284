// Package config exposes the environment-driven configuration of the
// polling agent.
package config

import (
	"os"
	"time"
)

func GetDeviceAddr() string {
	addr := os.Getenv("DW_DEVICE_ADDR")
	if addr == "" {
		addr = "simulator:80"
	}
	return addr
}

func GetIngestURL() string {
	url := os.Getenv("DW_INGEST_URL")
	if url == "" {
		url = "http://localhost:8080/api/shelly"
	}
	return url
}

func GetPollInterval() time.Duration {
	return durationEnv("DW_POLL_INTERVAL", 5*time.Second)
}

func GetProbeTimeout() time.Duration {
	return durationEnv("DW_PROBE_TIMEOUT", time.Second)
}

func GetFetchTimeout() time.Duration {
	return durationEnv("DW_FETCH_TIMEOUT", 5*time.Second)
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
