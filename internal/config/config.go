// Package config handles objtool configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/objmesh/pkg/mesh"
)

// Config holds all objtool settings.
type Config struct {
	Mesh    MeshConfig    `yaml:"mesh"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// MeshConfig controls which streams a load produces and how.
type MeshConfig struct {
	PositionDim int  `yaml:"position_dim"` // 1, 2 or 3
	TexCoordDim int  `yaml:"texcoord_dim"` // 0 disables texcoords
	Normals     bool `yaml:"normals"`
	IndexWidth  int  `yaml:"index_width"` // 8, 16 or 32
	Normalize   bool `yaml:"normalize"`   // center and scale positions into [-0.5, 0.5]
	FlipV       bool `yaml:"flip_v"`      // v -> 1 - v
	Strict      bool `yaml:"strict"`      // treat load warnings as errors
}

// OutputConfig holds conversion output settings.
type OutputConfig struct {
	Dir     string `yaml:"dir"`
	Workers int    `yaml:"workers"` // concurrent conversions
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Mesh: MeshConfig{
			PositionDim: 3,
			TexCoordDim: 2,
			Normals:     true,
			IndexWidth:  32,
		},
		Output: OutputConfig{
			Dir:     ".",
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// MeshOptions converts the mesh section into load options.
func (c *Config) MeshOptions() mesh.Options {
	opts := mesh.Options{
		PositionDim: mesh.Dimension(c.Mesh.PositionDim),
		TexCoordDim: mesh.Dimension(c.Mesh.TexCoordDim),
	}
	if c.Mesh.Normals {
		opts.NormalDim = mesh.Dim3
	}
	return opts
}

// Validate checks values that cannot be expressed in YAML types.
// Raw ints are range-checked before MeshOptions narrows them.
func (c *Config) Validate() error {
	if c.Mesh.PositionDim < 1 || c.Mesh.PositionDim > 3 {
		return fmt.Errorf("%w: position_dim %d", mesh.ErrInvalidDimension, c.Mesh.PositionDim)
	}
	if c.Mesh.TexCoordDim < 0 || c.Mesh.TexCoordDim > 3 {
		return fmt.Errorf("%w: texcoord_dim %d", mesh.ErrInvalidDimension, c.Mesh.TexCoordDim)
	}
	switch c.Mesh.IndexWidth {
	case 8, 16, 32:
	default:
		return fmt.Errorf("%w: %d", mesh.ErrInvalidWidth, c.Mesh.IndexWidth)
	}
	if err := c.MeshOptions().Validate(); err != nil {
		return err
	}
	if c.Output.Workers < 1 {
		return fmt.Errorf("output.workers must be at least 1, got %d", c.Output.Workers)
	}
	return nil
}
