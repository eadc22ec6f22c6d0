// Package cache implements a hash-keyed compile cache backed by
// database/sql, wired to four DSN schemes: sqlite://, postgres://,
// mysql://, mssql://. A cache hit returns a previously compiled Tape
// Language program without re-running the pipeline, keyed on the SHA-256
// of the BASIC source plus the compile.Options that produced it.
//
// Grounded on _teacher_database/db_manager.go's driver-name switch over
// a DSN and its id/created/last-used connection bookkeeping, adapted
// from an in-memory connection registry to a single persistent table.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Cache wraps a *sql.DB holding a single "compiles" table.
type Cache struct {
	db     *sql.DB
	driver string
}

// driverFor maps a DSN's scheme prefix to the database/sql driver name
// registered by that backend's blank import.
func driverFor(dsn string) (driver, rest string, err error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	case strings.HasPrefix(dsn, "mysql://"):
		return "mysql", strings.TrimPrefix(dsn, "mysql://"), nil
	case strings.HasPrefix(dsn, "mssql://"), strings.HasPrefix(dsn, "sqlserver://"):
		return "sqlserver", dsn, nil
	default:
		return "", "", errors.Errorf("cache: unrecognized DSN scheme in %q", dsn)
	}
}

// Open connects to dsn, picking the driver from its scheme, and ensures
// the backing table exists.
func Open(dsn string) (*Cache, error) {
	driver, connStr, err := driverFor(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, errors.Wrapf(err, "cache: open %s", driver)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "cache: ping %s", driver)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	c := &Cache{db: db, driver: driver}
	if err := c.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// rebind rewrites a query written with ? placeholders into whatever
// positional syntax c.driver actually accepts: lib/pq requires $N and
// go-mssqldb requires @pN, while the sqlite and mysql drivers accept ?
// as-is.
func (c *Cache) rebind(query string) string {
	var place func(n int) string
	switch c.driver {
	case "postgres":
		place = func(n int) string { return fmt.Sprintf("$%d", n) }
	case "sqlserver":
		place = func(n int) string { return fmt.Sprintf("@p%d", n) }
	default:
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(place(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c *Cache) ensureSchema() error {
	_, err := c.db.Exec(`
CREATE TABLE IF NOT EXISTS compiles (
	hash TEXT PRIMARY KEY,
	build_id TEXT NOT NULL,
	output TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	last_used_at TIMESTAMP NOT NULL
)`)
	if err != nil {
		return errors.Wrap(err, "cache: ensure schema")
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key hashes a BASIC source string together with the compile options
// string that produced (or would produce) an entry -- two sources that
// compile to identical text under different option strings must not
// collide.
func Key(src, optionsFingerprint string) string {
	sum := sha256.Sum256([]byte(optionsFingerprint + "\x00" + src))
	return hex.EncodeToString(sum[:])
}

// Entry is a cache hit: the stored output plus the timestamp it was
// first compiled, so callers can report a humanize.Time-formatted age.
type Entry struct {
	Output    string
	CreatedAt time.Time
}

// Get returns the cached entry for hash, if present, bumping its
// last-used timestamp.
func (c *Cache) Get(hash string) (entry Entry, ok bool, err error) {
	row := c.db.QueryRow(c.rebind(`SELECT output, created_at FROM compiles WHERE hash = ?`), hash)
	if err := row.Scan(&entry.Output, &entry.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, false, nil
		}
		return Entry{}, false, errors.Wrap(err, "cache: get")
	}

	if _, err := c.db.Exec(c.rebind(`UPDATE compiles SET last_used_at = ? WHERE hash = ?`), time.Now(), hash); err != nil {
		return Entry{}, false, errors.Wrap(err, "cache: touch")
	}
	return entry, true, nil
}

// Put stores output under hash, tagging the entry with a fresh build ID,
// and returns that build ID.
func (c *Cache) Put(hash, output string) (string, error) {
	buildID := uuid.New().String()
	now := time.Now()

	_, err := c.db.Exec(c.rebind(`
INSERT INTO compiles (hash, build_id, output, created_at, last_used_at)
VALUES (?, ?, ?, ?, ?)`), hash, buildID, output, now, now)
	if err != nil {
		return "", errors.Wrap(err, "cache: put")
	}
	return buildID, nil
}

// Fingerprint renders compile.Options' three flags as a stable string for Key. It
// lives here (not in package compile) so compile has no reason to import
// a domain-stack package.
func Fingerprint(semComments, irComments, constSynth bool) string {
	return fmt.Sprintf("s=%t,i=%t,c=%t", semComments, irComments, constSynth)
}
