package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/cta/internal/sparql"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "cta"

	// DefaultTopN predicts a single class per column.
	DefaultTopN = 1

	// DefaultTimeout bounds a single knowledge-base lookup.
	DefaultTimeout = sparql.DefaultTimeout

	// DefaultConcurrency annotates one target at a time.
	DefaultConcurrency = 1

	// DefaultCellConcurrency resolves one cell at a time.
	DefaultCellConcurrency = 1

	// DefaultTargetsFile is the target list of the first benchmark round.
	DefaultTargetsFile = "dataset/targets/CTA_Round1_Targets.csv"

	// DefaultTablesDir holds one <table_id>.csv file per table.
	DefaultTablesDir = "dataset/tables"

	// DefaultOutputFile is where predictions are saved after confirmation.
	DefaultOutputFile = "result.csv"

	// DefaultMaxBodySize limits the size of a SPARQL response.
	DefaultMaxBodySize = sparql.DefaultMaxBodySize
)

// Config holds all configuration options for cta.
// It is populated from defaults, the config file and CLI flags, and then
// passed down explicitly; there is no global configuration state.
type Config struct {
	// Endpoint is the SPARQL endpoint URL.
	Endpoint string

	// ResourceBase is prefixed to a lookup key to form the resource IRI.
	ResourceBase string

	// Namespace is the ontology namespace; only classes under it are kept.
	Namespace string

	// Headers are extra HTTP headers sent with every lookup, e.g. API keys.
	Headers map[string]string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// UserAgent is the User-Agent header sent with lookups.
	UserAgent string

	// Timeout bounds each lookup. A lookup that exceeds it yields no classes.
	Timeout time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// TopN is the number of classes predicted per column.
	TopN int

	// Concurrency is the number of targets annotated at once.
	Concurrency int

	// CellConcurrency is the number of cells of one column resolved at once.
	CellConcurrency int

	// SkipLookupErrors treats failed lookups as cells without classes
	// instead of stopping the run.
	SkipLookupErrors bool

	// TargetsFile is the headerless (table_id, column_index) list.
	TargetsFile string

	// TablesDir is the directory of table files.
	TablesDir string

	// GroundTruthFile, when set, is used to score the predictions.
	GroundTruthFile string

	// Limit bounds the number of targets read; 0 reads all of them.
	Limit int

	// OutputFile is the result CSV path.
	OutputFile string

	// AssumeYes saves results without asking for confirmation.
	AssumeYes bool

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport and MarkdownReport select the report format.
	// They are mutually exclusive; neither means plain text.
	JSONReport     bool
	MarkdownReport bool

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// DBDir is the directory of the run history database.
	DBDir string

	// SaveToDB records runs and scores in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Endpoint:        sparql.DefaultEndpoint,
		ResourceBase:    sparql.DefaultResourceBase,
		Namespace:       sparql.DefaultOntologyNamespace,
		Headers:         make(map[string]string),
		UserAgent:       sparql.DefaultUserAgent,
		Timeout:         DefaultTimeout,
		MaxBodySize:     DefaultMaxBodySize,
		TopN:            DefaultTopN,
		Concurrency:     DefaultConcurrency,
		CellConcurrency: DefaultCellConcurrency,
		TargetsFile:     DefaultTargetsFile,
		TablesDir:       DefaultTablesDir,
		OutputFile:      DefaultOutputFile,
		DBDir:           XDGDataDir(),
		SaveToDB:        true,
	}
}

// XDGDataDir returns the XDG data directory for cta.
// On Linux: ~/.local/share/cta
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for cta.
// On Linux: ~/.config/cta
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.TopN < 1 {
		return ErrInvalidTopN
	}
	if c.Endpoint == "" {
		return ErrNoEndpoint
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency < 1 {
		return ErrInvalidConcurrency
	}
	if c.CellConcurrency < 1 {
		return ErrInvalidCellConcurrency
	}
	if c.Limit < 0 {
		return ErrInvalidLimit
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.TargetsFile == "" {
		return ErrNoTargetsFile
	}
	if c.TablesDir == "" {
		return ErrNoTablesDir
	}
	return nil
}
