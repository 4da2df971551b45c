package configs

import (
	"sync/atomic"
	"time"

	telegramApi "slingshotBot/pkg/api/telegram"
)

var RuntimeConfig *config

// NewRuntimeConfig replaces the process-wide switch. Tests create it per case.
func NewRuntimeConfig(openingEnabled bool) *config {
	c := &config{}
	c.openingEnabled.Store(openingEnabled)
	RuntimeConfig = c
	return c
}

type config struct {
	/**
	Openings switcher, enable/disable new positions.
	Open positions keep being managed (addons, fixes, stops) when disabled.
	*/
	openingEnabled atomic.Bool
}

func (c *config) IsOpeningEnabled() bool {
	return c.openingEnabled.Load()
}

func (c *config) EnableOpening() {
	c.openingEnabled.Store(true)
}

func (c *config) DisableOpening() {
	c.openingEnabled.Store(false)
}

func (c *config) DisableOpeningFor(duration time.Duration) {
	c.DisableOpening()
	telegramApi.SendTextToTelegramChat("Opening of new positions has been disabled for " + duration.String() + ".")

	time.AfterFunc(duration, func() {
		c.EnableOpening()
		telegramApi.SendTextToTelegramChat("Opening of new positions has been enabled.")
	})
}
