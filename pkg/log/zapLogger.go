package log

import (
	"errors"
	"os"
	"strconv"

	"go.uber.org/zap"
)

// InitLogger installs the global logger: development output by default, JSON production output when LOG_JSON=true.
func InitLogger() {
	var logger *zap.Logger
	var err error

	if jsonEnabled, _ := strconv.ParseBool(os.Getenv("LOG_JSON")); jsonEnabled {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(errors.New("Fatal error during create logger" + err.Error()))
	}
	zap.ReplaceGlobals(logger)
}
