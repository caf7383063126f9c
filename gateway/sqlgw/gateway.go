// Package sqlgw provides a SQL gateway over database/sql. Datasets are
// tables; restriction and projection push down into the generated SELECT.
// The transaction runner provides real begin/commit/rollback semantics
// with deadlock retry.
//
// The package is driver-agnostic: any registered database/sql driver
// works. It registers itself for the "sql" adapter and for the common URL
// schemes, so gateway.Setup("sqlite3:///tmp/app.db") resolves here.
package sqlgw

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sort"

	"go.uber.org/zap"

	"github.com/conduit-lang/relata/gateway"
	"github.com/conduit-lang/relata/relation"
)

// Adapter is the identifier this package registers under.
const Adapter = "sql"

func init() {
	builder := func(args ...any) (gateway.Gateway, error) {
		return fromArgs(args...)
	}
	gateway.Register(Adapter, builder)
	for _, scheme := range []string{"sqlite3", "postgres", "mysql"} {
		gateway.Register(scheme, builder)
	}
}

func fromArgs(args ...any) (gateway.Gateway, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: sql adapter requires a connection URL or *sql.DB", gateway.ErrInvalidSetup)
	}

	switch first := args[0].(type) {
	case *sql.DB:
		driver := ""
		if len(args) > 1 {
			if s, ok := args[1].(string); ok {
				driver = s
			}
		}
		return New(first, driver), nil

	case string:
		if len(args) == 2 {
			if dsn, ok := args[1].(string); ok {
				db, err := sql.Open(first, dsn)
				if err != nil {
					return nil, fmt.Errorf("%w: %v", gateway.ErrAdapterLoad, err)
				}
				return New(db, first), nil
			}
		}
		return Open(first)

	default:
		return nil, fmt.Errorf("%w: unsupported sql setup argument %T", gateway.ErrInvalidSetup, args[0])
	}
}

// Open connects using a connection URL whose scheme names the database/sql
// driver, e.g. "sqlite3:///var/data/app.db" or
// "postgres://user@host/db".
func Open(rawURL string) (*Gateway, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return nil, fmt.Errorf("%w: %q", gateway.ErrRawURL, rawURL)
	}

	dsn := rawURL
	switch u.Scheme {
	case "sqlite3":
		// sqlite DSNs are bare paths: sqlite3:///a/b.db and
		// sqlite3::memory: both work.
		if u.Opaque != "" {
			dsn = u.Opaque
		} else {
			dsn = u.Path
		}
	}

	db, err := sql.Open(u.Scheme, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrAdapterLoad, err)
	}
	return New(db, u.Scheme), nil
}

// Gateway is a SQL-backed gateway.
type Gateway struct {
	gateway.Base
	db     *sql.DB
	driver string
}

// New wraps an already-open database handle. driver may be empty; it only
// affects placeholder style and schema introspection.
func New(db *sql.DB, driver string) *Gateway {
	return &Gateway{
		Base:   gateway.NewBase(Adapter),
		db:     db,
		driver: driver,
	}
}

// DB returns the underlying database handle.
func (g *Gateway) DB() *sql.DB {
	return g.db
}

// Dataset returns a table-backed dataset. The table is not created; DDL is
// the application's business.
func (g *Gateway) Dataset(name string) (relation.Dataset, error) {
	return &Table{db: g.db, name: name, driver: g.driver}, nil
}

// HasDataset reports whether a table with the name exists.
func (g *Gateway) HasDataset(name string) bool {
	for _, table := range g.Schema() {
		if table == name {
			return true
		}
	}
	return false
}

// Schema introspects the backend's table names, sorted. Introspection
// failures are logged and reported as an empty schema.
func (g *Gateway) Schema() []string {
	query := tableQuery(g.driver)
	rows, err := g.db.Query(query)
	if err != nil {
		g.Logger().Debug("schema introspection failed", zap.Error(err))
		return nil
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			g.Logger().Debug("schema introspection failed", zap.Error(err))
			return nil
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		g.Logger().Debug("schema introspection failed", zap.Error(err))
		return nil
	}
	sort.Strings(names)
	return names
}

func tableQuery(driver string) string {
	switch driver {
	case "sqlite3":
		return "SELECT name FROM sqlite_master WHERE type = 'table'"
	case "mysql":
		return "SHOW TABLES"
	default:
		return "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public'"
	}
}

// TransactionRunner returns the SQL runner.
func (g *Gateway) TransactionRunner() gateway.Runner {
	return &Runner{db: g.db, logger: g.Logger()}
}

// Transaction executes fn inside a database transaction. The transaction
// handle is reachable from the block's context via TxFrom.
func (g *Gateway) Transaction(ctx context.Context, opts gateway.TxOptions, fn gateway.TxFunc) (any, error) {
	return gateway.RunTransaction(g.TransactionRunner(), ctx, opts, fn)
}

// Disconnect closes the database handle.
func (g *Gateway) Disconnect() error {
	return g.db.Close()
}
