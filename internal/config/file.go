package config

import (
	"fmt"
	"maps"
	"time"
)

// DatasetConfig locates the benchmark files.
type DatasetConfig struct {
	// Targets is the headerless (table_id, column_index) list.
	Targets string `yaml:"targets,omitempty"`

	// Tables is the directory holding <table_id>.csv files.
	Tables string `yaml:"tables,omitempty"`

	// GroundTruth is the headerless (table_id, column_index, class) file.
	GroundTruth string `yaml:"groundTruth,omitempty"`
}

// File represents the structure of the .cta configuration file.
// Every field is optional; zero values leave the current setting alone.
type File struct {
	Endpoint     string            `yaml:"endpoint,omitempty"`
	ResourceBase string            `yaml:"resourceBase,omitempty"`
	Namespace    string            `yaml:"namespace,omitempty"`
	Headers      map[string]string `yaml:"headers,omitempty"`
	Proxy        string            `yaml:"proxy,omitempty"`

	// Timeout is a Go duration string such as "30s" or "1m".
	Timeout string `yaml:"timeout,omitempty"`

	TopN             int   `yaml:"topN,omitempty"`
	Concurrency      int   `yaml:"concurrency,omitempty"`
	CellConcurrency  int   `yaml:"cellConcurrency,omitempty"`
	SkipLookupErrors *bool `yaml:"skipLookupErrors,omitempty"`

	Dataset DatasetConfig `yaml:"dataset,omitempty"`
	Output  string        `yaml:"output,omitempty"`
}

// Apply copies every value set in the file onto c.
// Headers are merged, with file values winning over existing keys.
func (f *File) Apply(c *Config) error {
	if f.Endpoint != "" {
		c.Endpoint = f.Endpoint
	}
	if f.ResourceBase != "" {
		c.ResourceBase = f.ResourceBase
	}
	if f.Namespace != "" {
		c.Namespace = f.Namespace
	}
	if len(f.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(f.Headers))
		}
		maps.Copy(c.Headers, f.Headers)
	}
	if f.Proxy != "" {
		c.ProxyAddress = f.Proxy
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %q", ErrInvalidTimeout, f.Timeout)
		}
		c.Timeout = d
	}
	if f.TopN != 0 {
		c.TopN = f.TopN
	}
	if f.Concurrency != 0 {
		c.Concurrency = f.Concurrency
	}
	if f.CellConcurrency != 0 {
		c.CellConcurrency = f.CellConcurrency
	}
	if f.SkipLookupErrors != nil {
		c.SkipLookupErrors = *f.SkipLookupErrors
	}
	if f.Dataset.Targets != "" {
		c.TargetsFile = f.Dataset.Targets
	}
	if f.Dataset.Tables != "" {
		c.TablesDir = f.Dataset.Tables
	}
	if f.Dataset.GroundTruth != "" {
		c.GroundTruthFile = f.Dataset.GroundTruth
	}
	if f.Output != "" {
		c.OutputFile = f.Output
	}
	return nil
}
