// Package facility composes the log store facility: it picks the storage backend, builds the base store and source
// registry on top of it, and schedules the retention job.
package facility

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/couchbase/tools-logstore/config"
	"github.com/couchbase/tools-logstore/core/log"
	"github.com/couchbase/tools-logstore/errdefs"
	"github.com/couchbase/tools-logstore/fsutil"
	"github.com/couchbase/tools-logstore/logstore"
	"github.com/couchbase/tools-logstore/retention"
	"github.com/couchbase/tools-logstore/schema"
	"github.com/couchbase/tools-logstore/sqlite"
	"github.com/couchbase/tools-logstore/table"
	"github.com/couchbase/tools-logstore/types/timeprovider"
)

// Options encapsulates the dependencies of a 'Facility'.
type Options struct {
	// Config is validated before anything is constructed.
	Config config.Config

	// DB is an SQLite database supplied by the host, when <nil> one is opened from 'Config.Path'.
	DB *sql.DB

	// Scheduler runs the retention job, when <nil> the job is built but not scheduled.
	Scheduler retention.Scheduler

	// Logger is the host's operational logger.
	Logger log.Logger

	// TimeProvider defaults to the current time.
	TimeProvider timeprovider.TimeProvider

	// Reporters are notified of retention results in addition to the logger and any configured NATS subject.
	Reporters []retention.Reporter

	// Publisher, when set, is used to report retention results to 'Config.Report.Subject' instead of connecting to
	// 'Config.Report.NATSURL'.
	Publisher retention.Publisher
}

// Facility owns the single storage backend of the process and everything built on top of it.
type Facility struct {
	config   config.Config
	table    table.Table
	store    *logstore.Store
	registry *logstore.Registry
	job      *retention.Job
	logger   log.WrappedLogger
	closers  []func() error
}

// New builds the facility described by the given options. Schema and configuration errors are fatal, an unavailable
// backend is not: entries are discarded and a warning is logged.
func New(options Options) (*Facility, error) {
	err := options.Config.Validate()
	if err != nil {
		return nil, err
	}

	if options.TimeProvider == nil {
		options.TimeProvider = timeprovider.CurrentTimeProvider{}
	}

	facility := &Facility{config: options.Config, logger: log.NewWrappedLogger(options.Logger)}

	err = facility.build(options)
	if err != nil {
		facility.Close()
		return nil, err
	}

	return facility, nil
}

func (f *Facility) build(options Options) error {
	mapper, err := schema.NewMapper(schema.Default(f.config.Table))
	if err != nil {
		return err
	}

	f.table, err = f.openTable(mapper.Schema(), options)
	if err != nil {
		return err
	}

	f.store, err = logstore.NewStore(f.table, mapper, logstore.StoreOptions{
		TimeProvider: options.TimeProvider,
		Logger:       options.Logger,
	})
	if err != nil {
		return err
	}

	f.registry, err = logstore.NewRegistry(f.store)
	if err != nil {
		return err
	}

	if f.config.Retention.Disabled {
		f.logger.Infof("(Facility) Retention is disabled")
		return nil
	}

	f.job, err = retention.NewJob(f.table, f.config.Policy(options.TimeProvider.Now()), retention.JobOptions{
		Reporters:    f.reporters(options),
		Logger:       options.Logger,
		TimeProvider: options.TimeProvider,
		LockPath:     f.config.Retention.LockPath,
	})
	if err != nil {
		return err
	}

	if options.Scheduler == nil {
		return nil
	}

	return f.job.Schedule(options.Scheduler)
}

// openTable returns the configured backend, falling back to a 'NullTable' when it's unavailable.
func (f *Facility) openTable(s schema.Schema, options Options) (table.Table, error) {
	tbl, err := f.openDurableTable(s, options)

	var schemaErr *schema.SchemaError
	if errors.As(err, &schemaErr) {
		return nil, err
	}

	if err != nil {
		f.logger.Warnf("(Facility) Durable log storage is unavailable, log entries will be discarded: %v", err)
		return table.NewNullTable(), nil
	}

	return tbl, nil
}

func (f *Facility) openDurableTable(s schema.Schema, options Options) (table.Table, error) {
	tableOptions := table.SQLiteTableOptions{
		TimeProvider: options.TimeProvider,
		Logger:       options.Logger,
		JournalMode:  f.config.JournalMode,
	}

	switch f.config.Backend {
	case config.BackendNone:
		f.logger.Infof("(Facility) Log entries will be discarded")
		return table.NewNullTable(), nil
	case config.BackendPebble:
		err := fsutil.MkdirParent(f.config.Path)
		if err != nil {
			return nil, err
		}

		tbl, err := table.OpenPebbleTable(f.config.Path, s, table.PebbleTableOptions{
			TimeProvider: options.TimeProvider,
			Logger:       options.Logger,
		})
		if err != nil {
			return nil, err
		}

		f.closers = append(f.closers, tbl.Close)

		return tbl, nil
	}

	if options.DB != nil {
		return table.NewSQLiteTable(options.DB, s, tableOptions)
	}

	if f.config.Path == "" {
		return nil, table.ErrStorageUnavailable
	}

	err := fsutil.MkdirParent(f.config.Path)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.Open(f.config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %v: %w", log.UserDataValue(f.config.Path), err)
	}

	tbl, err := table.NewSQLiteTable(db, s, tableOptions)
	if err != nil {
		db.Close()
		return nil, err
	}

	f.closers = append(f.closers, db.Close)

	return tbl, nil
}

// reporters returns the reporters retention results are sent to.
func (f *Facility) reporters(options Options) []retention.Reporter {
	reporters := append([]retention.Reporter{retention.NewLogReporter(options.Logger)}, options.Reporters...)

	publisher := options.Publisher

	if publisher == nil && f.config.Report.NATSURL != "" {
		conn, err := nats.Connect(f.config.Report.NATSURL, nats.Name("logstore"))
		if err != nil {
			f.logger.Warnf("(Facility) Failed to connect to NATS, retention results will not be published: %v", err)
			return reporters
		}

		f.closers = append(f.closers, func() error { conn.Close(); return nil })

		publisher = conn
	}

	if publisher != nil {
		reporters = append(reporters, retention.NewNATSReporter(publisher, f.config.Report.Subject, options.Logger))
	}

	return reporters
}

// Store returns the unscoped store.
func (f *Facility) Store() *logstore.Store {
	return f.store
}

// Registry returns the registry of source scoped stores.
func (f *Facility) Registry() *logstore.Registry {
	return f.registry
}

// Logger returns the store scoped to the given source, an empty source returns the unscoped store.
func (f *Facility) Logger(sourceID string) *logstore.Store {
	return f.registry.Get(sourceID)
}

// Job returns the retention job, <nil> when retention is disabled.
func (f *Facility) Job() *retention.Job {
	return f.job
}

// Durable returns a boolean indicating whether entries are being persisted.
func (f *Facility) Durable() bool {
	return f.table.Exists()
}

// Close releases any resources opened by the facility, resources supplied by the host are left open.
func (f *Facility) Close() error {
	errs := &errdefs.MultiError{Prefix: "failed to close log facility: "}

	if f.registry != nil {
		f.logger.Debugf("(Facility) Closing log facility with %d source scoped store(s)", f.registry.Sources())
	}

	for i := len(f.closers) - 1; i >= 0; i-- {
		errs.Add(f.closers[i]())
	}

	f.closers = nil

	return errs.ErrOrNil()
}
