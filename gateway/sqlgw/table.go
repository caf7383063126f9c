package sqlgw

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/conduit-lang/relata/relation"
)

type restriction struct {
	field  string
	values []any
}

// Table is a table-backed dataset. Restrict and Project accumulate into
// the generated SELECT; nothing touches the database until Each runs.
type Table struct {
	db      *sql.DB
	name    string
	driver  string
	columns []string
	filters []restriction
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Restrict returns a derived dataset whose SELECT carries a WHERE-IN
// clause for the field.
func (t *Table) Restrict(field string, values []any) relation.Dataset {
	derived := t.clone()
	derived.filters = append(derived.filters, restriction{field: field, values: values})
	return derived
}

// Project returns a derived dataset limited to the given columns.
func (t *Table) Project(fields ...string) relation.Dataset {
	derived := t.clone()
	derived.columns = append([]string(nil), fields...)
	return derived
}

func (t *Table) clone() *Table {
	return &Table{
		db:      t.db,
		name:    t.name,
		driver:  t.driver,
		columns: append([]string(nil), t.columns...),
		filters: append([]restriction(nil), t.filters...),
	}
}

func (t *Table) placeholder(n int) string {
	if t.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (t *Table) selectSQL() (string, []any) {
	cols := "*"
	if len(t.columns) > 0 {
		cols = strings.Join(t.columns, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", cols, t.name)

	var args []any
	for i, f := range t.filters {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		placeholders := make([]string, len(f.values))
		for j, v := range f.values {
			placeholders[j] = t.placeholder(len(args) + 1)
			args = append(args, v)
		}
		fmt.Fprintf(&sb, "%s IN (%s)", f.field, strings.Join(placeholders, ", "))
	}

	return sb.String(), args
}

// Each runs the dataset's SELECT once and yields every row as a tuple in
// result order.
func (t *Table) Each(fn func(relation.Tuple) error) error {
	query, args := t.selectSQL()
	rows, err := t.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("select from %s: %w", t.name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return err
		}

		tuple := make(relation.Tuple, len(columns))
		for i, col := range columns {
			// Text columns surface as []byte from most drivers.
			if b, ok := values[i].([]byte); ok {
				tuple[col] = string(b)
			} else {
				tuple[col] = values[i]
			}
		}
		if err := fn(tuple); err != nil {
			return err
		}
	}

	return rows.Err()
}

// Insert appends a tuple as an INSERT with deterministic column order.
func (t *Table) Insert(tuple relation.Tuple) error {
	if len(tuple) == 0 {
		return fmt.Errorf("insert into %s: empty tuple", t.name)
	}

	fields := make([]string, 0, len(tuple))
	for field := range tuple {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	placeholders := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, field := range fields {
		placeholders[i] = t.placeholder(i + 1)
		args[i] = tuple[field]
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		t.name, strings.Join(fields, ", "), strings.Join(placeholders, ", "),
	)
	if _, err := t.db.Exec(query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", t.name, err)
	}
	return nil
}
