package postgres

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jackc/pgx"
	"github.com/jackc/pgx/stdlib"
	"github.com/jmoiron/sqlx"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	DBName   string
	SSLMode  string
}

func (c *Config) GetDataSource() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.DBName, c.SSLMode)
}

func (c *Config) GetDriverConfig() *stdlib.DriverConfig {
	d := &stdlib.DriverConfig{
		ConnConfig: pgx.ConnConfig{
			RuntimeParams: map[string]string{
				"standard_conforming_strings": "on",
			},
			PreferSimpleProtocol: true,
		},
	}
	stdlib.RegisterDriverConfig(d)
	return d
}

// ConfigFromEnv reads DB_HOST, DB_PORT, DB_USERNAME, DB_PASSWORD, DB_NAME and DB_SSLMODE.
func ConfigFromEnv() *Config {
	port, _ := strconv.Atoi(os.Getenv("DB_PORT"))
	return &Config{
		Host:     os.Getenv("DB_HOST"),
		Port:     port,
		Username: os.Getenv("DB_USERNAME"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}
}

func NewPostgresDb(cfg *Config) (*sqlx.DB, error) {
	driverConfig := cfg.GetDriverConfig()
	dataSource := cfg.GetDataSource()

	db, err := sqlx.Connect("pgx", driverConfig.ConnectionString(dataSource))
	if err != nil {
		return nil, err
	}

	maxOpenConnection, _ := strconv.Atoi(os.Getenv("DB_MAX_OPEN_CONNECTIONS"))
	db.SetMaxOpenConns(maxOpenConnection)

	return db, nil
}
