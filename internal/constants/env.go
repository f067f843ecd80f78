// Package constants provides centralized definitions of constants used throughout the application
package constants

// Environment variable names
const (
	// EnvPort is the environment variable containing the HTTP listen port
	EnvPort = "PORT"

	// EnvLogLevel is the environment variable containing the log level
	EnvLogLevel = "LOG_LEVEL"

	// EnvItemTimeout is the environment variable containing the per-record mutation timeout
	EnvItemTimeout = "ITEM_TIMEOUT"

	// EnvServerAddress is the environment variable containing the API server address for the CLI
	EnvServerAddress = "SITEGRID_SERVER_ADDRESS"

	// EnvDBHost is the environment variable containing the database host
	EnvDBHost = "DB_HOST"

	// EnvDBUser is the environment variable containing the database user
	EnvDBUser = "DB_USER"

	// EnvDBPassword is the environment variable containing the database password
	EnvDBPassword = "DB_PASSWORD"

	// EnvDBName is the environment variable containing the database name
	EnvDBName = "DB_NAME"

	// EnvDBPort is the environment variable containing the database port
	EnvDBPort = "DB_PORT"
)
