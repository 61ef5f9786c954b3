package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEngine()
	c.normalizeLedger()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEngine() {
	c.Engine.FFmpeg = strings.TrimSpace(c.Engine.FFmpeg)
	if c.Engine.FFmpeg == "" {
		c.Engine.FFmpeg = defaultFFmpegBinary
	}
	c.Engine.FFprobe = strings.TrimSpace(c.Engine.FFprobe)
	if c.Engine.FFprobe == "" {
		c.Engine.FFprobe = defaultFFprobeBinary
	}
}

func (c *Config) normalizeLedger() {
	c.Ledger.Path = strings.TrimSpace(c.Ledger.Path)
	if c.Ledger.Path != "" {
		if expanded, err := expandPath(c.Ledger.Path); err == nil {
			c.Ledger.Path = expanded
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
