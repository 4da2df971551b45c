package bootstrap

import (
	"fmt"

	"slingshotBot/pkg/log"
	"slingshotBot/pkg/repository/postgres"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Run loads .env and configs/config.yml and installs the logger.
func Run() {
	if err := godotenv.Load(); err != nil {
		panic(fmt.Sprintf("Failed load env file: %s", err.Error()))
	}
	if err := initConfig(); err != nil {
		panic(fmt.Sprintf("Error during reading configs: %s", err.Error()))
	}
	log.InitLogger()

	zap.S().Info("Trading bot is starting...")
}

func initConfig() error {
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// Database connects to postgres and applies migrations. The returned closure closes the connection.
func Database() (*sqlx.DB, func()) {
	postgresDb, err := postgres.NewPostgresDb(postgres.ConfigFromEnv())
	if err != nil {
		panic(fmt.Sprintf("FAILED to init db: %s", err.Error()))
	}

	initMigrations(postgresDb)

	return postgresDb, func() {
		if err := postgresDb.Close(); err != nil {
			zap.S().Errorf("Error during closing postgres connection: %s", err.Error())
		}
	}
}

func initMigrations(db *sqlx.DB) {
	migrations := &migrate.FileMigrationSource{
		Dir: "./migrations",
	}

	n, err := migrate.Exec(db.DB, "postgres", migrations, migrate.Up)
	if err != nil {
		zap.S().Errorf("Error during applying migrations! %s", err.Error())
	}
	zap.S().Infof("Applied %d migrations!", n)
}
