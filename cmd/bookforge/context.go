package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"bookforge/internal/config"
	"bookforge/internal/deps"
	"bookforge/internal/forge"
	"bookforge/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configFile string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configFile = resolved
	})
	return c.config, c.configErr
}

// configPath returns the resolved configuration file location. Only valid
// after ensureConfig has succeeded.
func (c *commandContext) configPath() string {
	return c.configFile
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// checkTools verifies the configured external binaries exist before a command
// that shells out to them starts writing files.
func (c *commandContext) checkTools() error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return forge.Wrap(forge.ErrValidation, "preflight",
			fmt.Sprintf("missing required tools: %s", strings.Join(missing, ", ")), nil)
	}
	return nil
}
