package io

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slok/vgrid/internal/model"
)

// ConfigYAMLRepository loads the session options from YAML files.
type ConfigYAMLRepository struct {
	fs fs.FS
}

// NewConfigYAMLRepository creates a new YAML config repository.
func NewConfigYAMLRepository(filesystem fs.FS) *ConfigYAMLRepository {
	return &ConfigYAMLRepository{fs: filesystem}
}

// GetOptions loads the options from a YAML file and returns them validated. Anything
// not set on the file keeps its default value.
func (r *ConfigYAMLRepository) GetOptions(ctx context.Context, path string) (model.Options, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.Options{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.Options{}, ctx.Err()
	}

	var cfg OptionsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.Options{}, fmt.Errorf("parsing YAML: %w", err)
	}

	opts, err := cfg.toModel()
	if err != nil {
		return model.Options{}, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := opts.Validate(); err != nil {
		return model.Options{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return opts, nil
}

// OptionsConfig represents the YAML structure of the config file.
type OptionsConfig struct {
	Debug    bool              `yaml:"debug"`
	Status   StatusConfig      `yaml:"status"`
	Tasks    TasksConfig       `yaml:"tasks"`
	Bindings map[string]string `yaml:"bindings"`
}

// StatusConfig represents the YAML structure for the status line configuration.
type StatusConfig struct {
	Separator *string `yaml:"separator,omitempty"`
	LeftMax   int     `yaml:"left_max"`
}

// TasksConfig represents the YAML structure for the background tasks configuration.
type TasksConfig struct {
	Retention string `yaml:"retention"`
}

func (c OptionsConfig) toModel() (model.Options, error) {
	opts := model.DefaultOptions()
	opts.Debug = c.Debug
	opts.LeftStatusMax = c.Status.LeftMax

	if c.Status.Separator != nil {
		opts.StatusSeparator = *c.Status.Separator
	}

	if c.Tasks.Retention != "" {
		d, err := time.ParseDuration(c.Tasks.Retention)
		if err != nil {
			return model.Options{}, fmt.Errorf("tasks retention: %w", err)
		}
		opts.TaskRetention = d
	}

	for k, v := range c.Bindings {
		opts.Bindings[k] = v
	}

	return opts, nil
}
