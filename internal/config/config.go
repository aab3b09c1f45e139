// Package config loads qcform settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/roach88/qcform/internal/access"
	"github.com/roach88/qcform/internal/form"
)

const (
	DefaultSpecsURL  = "https://script.google.com/macros/s/AKfycbx0feeplSe_FRg91TW_RCN0LTnj7gtF0WmuVdxQyXdRk8MAq5RVj-WxMrR_8TYaN9cK/exec"
	DefaultSubmitURL = "https://script.google.com/macros/s/AKfycbz7cpcKH2O6n_vf6693RNj2AU5uhj6lssp7owb-oCF1UB09QmSgP09o_7UND6hHnd6t/exec"
	DefaultOperator  = "usuario@newsan.com.ar"
	DefaultLocation  = "America/Argentina/Buenos_Aires"
)

// Config is the complete qcform configuration.
type Config struct {
	Endpoints EndpointsConfig `yaml:"endpoints"`
	Operator  string          `yaml:"operator"`
	Timestamp TimestampConfig `yaml:"timestamp"`
	Access    AccessConfig    `yaml:"access"`
}

// EndpointsConfig holds the remote service URLs.
type EndpointsConfig struct {
	Specs     string `yaml:"specs"`
	Submit    string `yaml:"submit"`
	Allowlist string `yaml:"allowlist"`
	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// TimestampConfig controls how the shared submission instant is rendered.
type TimestampConfig struct {
	Layout   string `yaml:"layout"`
	Location string `yaml:"location"`
}

// AccessConfig configures the sign-in gate.
type AccessConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Domain   string   `yaml:"domain"`
	Fallback []string `yaml:"fallback"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Endpoints: EndpointsConfig{
			Specs:  DefaultSpecsURL,
			Submit: DefaultSubmitURL,
		},
		Operator: DefaultOperator,
		Timestamp: TimestampConfig{
			Layout:   form.DefaultTimestampLayout,
			Location: DefaultLocation,
		},
		Access: AccessConfig{
			Domain:   access.DefaultDomain,
			Fallback: append([]string(nil), fallbackAllowlist...),
		},
	}
}

// LoadFromFile reads a config file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	c := DefaultConfig()
	if err := c.MergeFile(path); err != nil {
		return nil, err
	}
	return c, nil
}

// MergeFile decodes the file at path over c. Keys absent from the file keep
// their current values; lists are replaced, not appended.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := c.merge(data); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) merge(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	c.applyDefaults()
	return nil
}

// applyDefaults fills fields a file explicitly blanked.
func (c *Config) applyDefaults() {
	c.Operator = strings.TrimSpace(c.Operator)
	if c.Operator == "" {
		c.Operator = DefaultOperator
	}
	if c.Timestamp.Layout == "" {
		c.Timestamp.Layout = form.DefaultTimestampLayout
	}
	if c.Timestamp.Location == "" {
		c.Timestamp.Location = DefaultLocation
	}
	if c.Access.Domain == "" {
		c.Access.Domain = access.DefaultDomain
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := checkURL("endpoints.specs", c.Endpoints.Specs, true); err != nil {
		return err
	}
	if err := checkURL("endpoints.submit", c.Endpoints.Submit, true); err != nil {
		return err
	}
	if err := checkURL("endpoints.allowlist", c.Endpoints.Allowlist, false); err != nil {
		return err
	}
	if c.Endpoints.Timeout < 0 {
		return fmt.Errorf("endpoints.timeout must not be negative")
	}
	if _, err := time.LoadLocation(c.Timestamp.Location); err != nil {
		return fmt.Errorf("timestamp.location: %w", err)
	}
	if c.Access.Enabled && len(c.Access.Fallback) == 0 && c.Endpoints.Allowlist == "" {
		return fmt.Errorf("access.enabled requires endpoints.allowlist or access.fallback")
	}
	return nil
}

func checkURL(field, raw string, required bool) error {
	if raw == "" {
		if required {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: unsupported scheme %q", field, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: missing host", field)
	}
	return nil
}

// Stamp builds the record timestamp format.
func (c *Config) Stamp() (form.Stamp, error) {
	loc, err := time.LoadLocation(c.Timestamp.Location)
	if err != nil {
		return form.Stamp{}, fmt.Errorf("timestamp.location: %w", err)
	}
	return form.Stamp{Layout: c.Timestamp.Layout, Location: loc}, nil
}
