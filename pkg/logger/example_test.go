package logger_test

import (
	"errors"
	"os"

	"github.com/wonny/aegis-advisor/backend/pkg/config"
	"github.com/wonny/aegis-advisor/backend/pkg/logger"
)

// Example_basic demonstrates logger creation from config
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	log := logger.New(cfg)
	log.Info("Advisor started")
	log.Infof("Scoring config %s loaded", "default")
}

// Example_withFields demonstrates structured logging around a recommendation
func Example_withFields() {
	log := logger.NewWithWriter(os.Stderr, "debug", "json")

	log.WithFields(map[string]interface{}{
		"ticker":    "MSFT",
		"composite": 71.2,
		"primary":   "CONVICTION_HOLD",
	}).Debug("Evaluated recommendation")
}

// Example_withError demonstrates the fail-open warning pattern
func Example_withError() {
	log := logger.NewWithWriter(os.Stderr, "info", "json")

	err := errors.New("connection refused")
	log.WithError(err).WithField("ticker", "MSFT").Warn("Dedup check failed, allowing insert")
}
