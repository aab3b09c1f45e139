package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is looked up in the working directory and its parents.
	ProjectConfigFile = "qcform.yaml"
	// UserConfigDir is relative to the home directory.
	UserConfigDir  = ".config/qcform"
	UserConfigFile = "config.yaml"
)

// Loader loads configuration with layered precedence:
//  1. defaults
//  2. user config (~/.config/qcform/config.yaml)
//  3. project config (qcform.yaml in the working directory or a parent)
//  4. an explicit path, when given
type Loader struct {
	logger *slog.Logger

	// Overridable for tests.
	homeDir string
	workDir string
}

// NewLoader creates a loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{logger: logger}
	if home, err := os.UserHomeDir(); err == nil {
		l.homeDir = home
	}
	if cwd, err := os.Getwd(); err == nil {
		l.workDir = cwd
	}
	return l
}

// Load merges every layer that exists and validates the result. A missing
// explicit path is an error; missing user or project files are not.
func (l *Loader) Load(explicit string) (*Config, error) {
	c := DefaultConfig()

	if p := l.userConfigPath(); p != "" {
		if err := c.MergeFile(p); err == nil {
			l.logger.Debug("loaded user config", slog.String("path", p))
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if p := l.findProjectConfig(); p != "" {
		if err := c.MergeFile(p); err != nil {
			return nil, err
		}
		l.logger.Debug("loaded project config", slog.String("path", p))
	}

	if explicit != "" {
		if err := c.MergeFile(explicit); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		l.logger.Debug("loaded config", slog.String("path", explicit))
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func (l *Loader) userConfigPath() string {
	if l.homeDir == "" {
		return ""
	}
	return filepath.Join(l.homeDir, UserConfigDir, UserConfigFile)
}

func (l *Loader) findProjectConfig() string {
	if l.workDir == "" {
		return ""
	}
	dir := l.workDir
	for {
		p := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
