// Package config provides the configuration of a cta run: the knowledge
// base endpoint and how to reach it, the dataset locations, the annotation
// count and concurrency, and report preferences.
//
// Values come from three layers applied in order: the defaults of
// NewConfig, an optional YAML file (.cta), and command-line flags.
package config
