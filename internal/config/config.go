// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config loads the configuration of the simcir command.
//
package config

import (
	"os"
	"strings"
	"time"

	"github.com/db47h/simcir"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the command configuration. Fields missing from a configuration
// file keep their default value.
//
type Config struct {
	Log     Log     `yaml:"log"`
	Engine  Engine  `yaml:"engine"`
	Metrics Metrics `yaml:"metrics"`
	Run     Run     `yaml:"run"`
}

// Log configures the logger.
//
type Log struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// Engine configures circuits.
//
type Engine struct {
	MaxCascadeSteps  int  `yaml:"maxCascadeSteps" validate:"gte=0"`
	StrictConnectors bool `yaml:"strictConnectors"`
}

// Metrics configures the Prometheus endpoint.
//
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr" validate:"required_if=Enabled true,omitempty,hostname_port"`
}

// Run configures a headless run.
//
type Run struct {
	Duration time.Duration `yaml:"duration" validate:"gte=0"`
	Probes   []string      `yaml:"probes" validate:"dive,required"`
}

// Default returns the default configuration.
//
func Default() *Config {
	return &Config{
		Log:     Log{Level: "info"},
		Engine:  Engine{MaxCascadeSteps: simcir.DefaultMaxSteps},
		Metrics: Metrics{Addr: ":9090"},
	}
}

var validate = validator.New()

// Validate checks the configuration values.
//
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fe.Namespace()+": failed on "+fe.Tag())
			}
			return errors.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// Parse decodes a YAML configuration over the defaults and validates it.
//
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "parse configuration")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads the configuration file at path. An empty path yields the default
// configuration.
//
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	c, err := Parse(data)
	return c, errors.Wrapf(err, "config file %s", path)
}

// ZapLevel returns the configured log level.
//
func (l Log) ZapLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Options returns the circuit options matching the engine configuration.
//
func (e Engine) Options() []simcir.Option {
	return []simcir.Option{
		simcir.WithMaxSteps(e.MaxCascadeSteps),
		simcir.StrictConnectors(e.StrictConnectors),
	}
}
