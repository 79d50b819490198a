package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar         = "PORT"
	appNameEnvVar      = "APP_NAME"
	envEnvVar          = "ENV"
	dashboardURLEnvVar = "DASHBOARD_URL"
)

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetDashboardURL() string
}

// EnvVars is an immutable snapshot of the process-level settings.
type EnvVars struct {
	port         string
	appName      string
	env          string
	dashboardURL string
}

var _ EnvConfig = EnvVars{}

func loadEnvVars() EnvVars {
	port := GetEnv(portEnvVar, "8080")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return EnvVars{
		port:         port,
		appName:      GetEnv(appNameEnvVar, "Guildboard API"),
		env:          GetEnv(envEnvVar, "DEV"),
		dashboardURL: GetEnv(dashboardURLEnvVar, "http://localhost:3000/dashboard"),
	}
}

func (e EnvVars) GetPort() string {
	return e.port
}

func (e EnvVars) GetAppName() string {
	return e.appName
}

func (e EnvVars) GetEnv() string {
	return e.env
}

// GetDashboardURL returns the post-login redirect target for the browser.
// The callback handler still allow-list checks it before redirecting.
func (e EnvVars) GetDashboardURL() string {
	return e.dashboardURL
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
