package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
)

type DatabaseConfig struct {
	DriverType string
	DriverArgs string
}

// ParseDatabaseConfigFromEnv DATABASE_URL format: mysql://user:pass@(host:port)/dbname?args
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, errors.New("environment variable DATABASE_URL is not set")
	}

	idx := strings.Index(databaseURL, "://")
	if idx <= 0 {
		return nil, fmt.Errorf("invalid DATABASE_URL: %s", databaseURL)
	}

	return &DatabaseConfig{DriverType: databaseURL[0:idx], DriverArgs: databaseURL[idx+3:]}, nil
}

// PrepareMysqlDatabase create the database when absent.
// driverArgs: user:pass@(host:port)/dbname?args
func PrepareMysqlDatabase(driverArgs string) error {
	slashIdx := strings.Index(driverArgs, "/")
	if slashIdx <= 0 {
		return fmt.Errorf("invalid mysql driver args: %s", driverArgs)
	}
	serverArgs := driverArgs[0 : slashIdx+1]
	databaseName := driverArgs[slashIdx+1:]
	if argsIdx := strings.Index(databaseName, "?"); argsIdx >= 0 {
		databaseName = databaseName[0:argsIdx]
	}
	if databaseName == "" {
		return fmt.Errorf("database name is not found in driver args: %s", driverArgs)
	}

	db, err := sql.Open("mysql", serverArgs)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("CREATE DATABASE IF NOT EXISTS `" + databaseName +
		"` DEFAULT CHARACTER SET utf8mb4 DEFAULT COLLATE utf8mb4_general_ci")
	return err
}
