package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateAlign(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateCompose(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateArchive() error {
	if !strings.HasPrefix(c.Archive.BaseURL, "http://") && !strings.HasPrefix(c.Archive.BaseURL, "https://") {
		return fmt.Errorf("archive.base_url must be an http(s) URL, got %q", c.Archive.BaseURL)
	}
	return ensurePositiveMap(map[string]int{
		"archive.request_timeout": c.Archive.RequestTimeout,
		"archive.retries":         c.Archive.Retries,
		"archive.concurrency":     c.Archive.Concurrency,
	})
}

func (c *Config) validateAlign() error {
	if c.Align.ToleranceSeconds <= 0 {
		return errors.New("align.tolerance_seconds must be positive")
	}
	if c.Align.Frames < 0 {
		return errors.New("align.frames must be zero (all frames) or positive")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if strings.TrimSpace(c.Output.Path) == "" {
		return errors.New("output.path must be set")
	}
	if c.Output.FPS <= 0 {
		return errors.New("output.fps must be positive")
	}
	return nil
}

func (c *Config) validateCompose() error {
	return ensurePositiveMap(map[string]int{
		"compose.tile_width":  c.Compose.TileWidth,
		"compose.tile_height": c.Compose.TileHeight,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
