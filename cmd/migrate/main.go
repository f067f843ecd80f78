// Command migrate runs the schema migrations against the configured database
package main

import (
	"github.com/joho/godotenv"

	"github.com/sitegrid/sitegrid/config"
	"github.com/sitegrid/sitegrid/internal/constants"
	"github.com/sitegrid/sitegrid/internal/db"
	"github.com/sitegrid/sitegrid/internal/logger"
)

func main() {
	_ = godotenv.Load()
	logger.InitializeAndConfigure()

	_, err := db.New(db.Options{
		Host:     config.GetEnv(constants.EnvDBHost, ""),
		User:     config.GetEnv(constants.EnvDBUser, ""),
		Password: config.GetEnv(constants.EnvDBPassword, ""),
		DBName:   config.GetEnv(constants.EnvDBName, ""),
		Port:     config.GetEnvInt(constants.EnvDBPort, 0),
	})
	if err != nil {
		logger.Fatalf("Migration failed: %v", err)
	}

	logger.Info("Migrations complete")
}
