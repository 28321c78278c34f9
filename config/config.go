// Package config provides the configuration of the log store facility, which is read from a JSON file and then
// overridden by 'LOGSTORE_*' environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/couchbase/tools-logstore/envvar"
	"github.com/couchbase/tools-logstore/errdefs"
	"github.com/couchbase/tools-logstore/retention"
	"github.com/couchbase/tools-logstore/schema"
)

// Backend selects the storage backend entries are persisted to.
type Backend string

const (
	// BackendSQLite persists entries to an SQLite database.
	BackendSQLite Backend = "sqlite"

	// BackendPebble persists entries to a pebble store.
	BackendPebble Backend = "pebble"

	// BackendNone discards every entry.
	BackendNone Backend = "none"
)

const (
	// DefaultTable is the name of the table entries are stored in.
	DefaultTable = "logs"

	// DefaultReportSubject is the NATS subject retention results are published to.
	DefaultReportSubject = "logstore.retention"
)

// Config is the configuration for the log store facility. It's treated as immutable once validated.
type Config struct {
	// Backend defaults to 'BackendSQLite'.
	Backend Backend `json:"backend"`

	// Path is the SQLite database file or pebble directory, an SQLite backend without a path (and without a database
	// supplied by the host) falls back to discarding entries.
	Path string `json:"path,omitempty"`

	// Table is the name of the table entries are stored in.
	Table string `json:"table"`

	// JournalMode is applied to SQLite databases when set e.g. "wal".
	JournalMode string `json:"journal_mode,omitempty"`

	Retention Retention `json:"retention"`
	Report    Report    `json:"report"`
}

// Retention configures the retention job.
type Retention struct {
	Disabled      bool                `json:"disabled,omitempty"`
	MaxAgeDays    int                 `json:"max_age_days"`
	Frequency     retention.Frequency `json:"frequency"`
	FirstRunDelay Duration            `json:"first_run_delay"`

	// LockPath is locked during each run, required when multiple processes share a database.
	LockPath string `json:"lock_path,omitempty"`
}

// Report configures where retention results are published, in addition to the host's logger.
type Report struct {
	NATSURL string `json:"nats_url,omitempty"`
	Subject string `json:"subject,omitempty"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Backend: BackendSQLite,
		Table:   DefaultTable,
		Retention: Retention{
			MaxAgeDays:    retention.DefaultMaxAgeDays,
			Frequency:     retention.DefaultFrequency,
			FirstRunDelay: Duration(retention.DefaultFirstRunDelay),
		},
		Report: Report{Subject: DefaultReportSubject},
	}
}

// Load reads the configuration at the given path, values which aren't present keep their defaults.
func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode config file '%s': %w", path, err)
	}

	return config, nil
}

// ApplyEnv overrides the configuration with any 'LOGSTORE_*' environment variables which are set.
func (c *Config) ApplyEnv() {
	if backend, ok := envvar.GetString("LOGSTORE_BACKEND"); ok {
		c.Backend = Backend(backend)
	}

	if path, ok := envvar.GetString("LOGSTORE_PATH"); ok {
		c.Path = path
	}

	if table, ok := envvar.GetString("LOGSTORE_TABLE"); ok {
		c.Table = table
	}

	if mode, ok := envvar.GetString("LOGSTORE_JOURNAL_MODE"); ok {
		c.JournalMode = mode
	}

	if disabled, ok := envvar.GetBool("LOGSTORE_RETENTION_DISABLED"); ok {
		c.Retention.Disabled = disabled
	}

	if days, ok := envvar.GetInt("LOGSTORE_MAX_AGE_DAYS"); ok {
		c.Retention.MaxAgeDays = days
	}

	if frequency, ok := envvar.GetString("LOGSTORE_RETENTION_FREQUENCY"); ok {
		c.Retention.Frequency = retention.Frequency(frequency)
	}

	if delay, ok := envvar.GetDuration("LOGSTORE_FIRST_RUN_DELAY"); ok {
		c.Retention.FirstRunDelay = Duration(delay)
	}

	if path, ok := envvar.GetString("LOGSTORE_LOCK_PATH"); ok {
		c.Retention.LockPath = path
	}

	if url, ok := envvar.GetString("LOGSTORE_NATS_URL"); ok {
		c.Report.NATSURL = url
	}

	if subject, ok := envvar.GetString("LOGSTORE_NATS_SUBJECT"); ok {
		c.Report.Subject = subject
	}
}

// Validate returns an error describing every problem with the configuration.
func (c Config) Validate() error {
	errs := &errdefs.MultiError{Prefix: "invalid configuration: "}

	switch c.Backend {
	case BackendSQLite, BackendNone:
	case BackendPebble:
		if c.Path == "" {
			errs.Add(fmt.Errorf("a path is required for the '%s' backend", c.Backend))
		}
	default:
		errs.Add(fmt.Errorf("unknown backend '%s'", c.Backend))
	}

	errs.Add(schema.Default(c.Table).Validate())

	if !c.Retention.Disabled {
		errs.Add(c.Policy(time.Time{}).Validate())
	}

	if c.Retention.FirstRunDelay < 0 {
		errs.Add(fmt.Errorf("first run delay must not be negative"))
	}

	if c.Report.NATSURL != "" && c.Report.Subject == "" {
		errs.Add(fmt.Errorf("a subject is required to report to NATS"))
	}

	return errs.ErrOrNil()
}

// Policy returns the retention policy for a job scheduled at the given time.
func (c Config) Policy(now time.Time) retention.Policy {
	return retention.Policy{
		MaxAgeDays: c.Retention.MaxAgeDays,
		Frequency:  c.Retention.Frequency,
		FirstRun:   now.Add(time.Duration(c.Retention.FirstRunDelay)),
	}
}
