package config

import (
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if c.Encoding.BitrateCapKbps < 32 || c.Encoding.BitrateCapKbps > 512 {
		return fmt.Errorf("encoding.bitrate_cap_kbps must be between 32 and 512, got %d", c.Encoding.BitrateCapKbps)
	}
	switch c.Encoding.Channels {
	case 1, 2:
	default:
		return fmt.Errorf("encoding.channels must be 1 or 2, got %d", c.Encoding.Channels)
	}
	switch c.Encoding.SampleRate {
	case 22050, 24000, 32000, 44100, 48000:
	default:
		return fmt.Errorf("encoding.sample_rate %d is not a supported AAC rate", c.Encoding.SampleRate)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console, or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
