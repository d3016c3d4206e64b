package config

import "go.uber.org/fx"

// Module provides *Config built from the process arguments, environment and optional YAML file.
var Module = fx.Provide(Load)
