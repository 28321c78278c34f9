// Package sqlite contains thin helpers around 'database/sql' and 'github.com/mattn/go-sqlite3' used by the persisted
// log table.
package sqlite

import (
	"database/sql"
)

// initBarrier wraps around a channel to expose an interface to use the channel as an initialization barrier.
type initBarrier chan struct{}

// newInitBarrier creates a new populated initialization barrier which will allow a single thread to perform
// initialization.
func newInitBarrier() initBarrier {
	barrier := make(chan struct{}, 1)
	barrier <- struct{}{}

	return barrier
}

// wait for access to whatever the initialization barrier is guarding, returns a boolean indicating whether the calling
// thread has exclusive access i.e. is the initializing thread.
func (i initBarrier) wait() bool {
	_, ok := <-i

	return ok
}

// failed indicates that initialization failed in some way, another thread will be allowed to attempt initialization.
func (i initBarrier) failed() {
	i <- struct{}{}
}

// success indicates that the initialization was a success, all threads blocking on 'wait' will now be unblocked.
func (i initBarrier) success() {
	close(i)
}

// barrier ensures that a single thread performs initialization of the SQLite library.
//
// NOTE: Hosts may open their log database from several goroutines at start up (for example, one per plugin/module),
// concurrent first calls to 'sql.Open' may race whilst initializing the SQLite library so we use an initialization
// barrier to ensure the first call to 'sql.Open' is performed by a single thread.
var barrier = newInitBarrier()

// Open a new SQLite database on disk whilst ensuring that the first time this function is called the SQLite library is
// initialized by a single thread.
func Open(path string) (*sql.DB, error) {
	// Attempt to read from the barrier channel
	ok := barrier.wait()

	// Open an SQLite database at the request location
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		if ok {
			barrier.failed()
		}

		return nil, err
	}

	// We didn't read anything from the barrier channel, this means we're not the first thread to open an SQLite
	// database, this means we can safety return early as there is nothing extra that we need to do.
	if !ok {
		return db, nil
	}

	// We're the first thread to open an SQLite database, we should call 'Ping' to ensure that the first connection is
	// made ensuring the SQLite library is initialized.
	err = db.Ping()
	if err != nil {
		barrier.failed()
		return nil, err
	}

	// Only close the barrier channel if the call to 'Ping' was successful, this allows other threads to begin using the
	// SQLite library whilst meaning failed calls to 'Ping' don't assume the SQLite library was initialized because it
	// might not have been.
	barrier.success()

	return db, nil
}
