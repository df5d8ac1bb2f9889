// Package sqlexec runs the SQL both generators produce against the
// relational pool and materializes the result as ordered rows. It is the
// single place that understands both calling conventions: the Template
// Generator's ordered "?" args and the Custom Generator's %(name)s named
// placeholders (§4.4-§4.6).
package sqlexec

import (
	"context"
	"fmt"
	"regexp"

	"github.com/janreigtorra/castellerq/internal/database"
	"github.com/janreigtorra/castellerq/types"
	"go.uber.org/zap"
)

// Row is one result record, preserving column order as returned by the
// driver rather than relying on map key ordering.
type Row struct {
	Columns []string
	Values  []any
}

// Executor runs parameterized SELECTs against the pool.
type Executor struct {
	pool   *database.PoolManager
	logger *zap.Logger
}

func New(pool *database.PoolManager, logger *zap.Logger) *Executor {
	return &Executor{pool: pool, logger: logger.With(zap.String("component", "sqlexec"))}
}

// namedPlaceholder matches Python-style %(name)s placeholders emitted by the
// Custom SQL Generator.
var namedPlaceholder = regexp.MustCompile(`%\(([a-zA-Z_][a-zA-Z0-9_]*)\)s`)

// ExecuteTemplate runs a Template Generator result: sql already carries
// ordered "?" placeholders, args bind positionally (§4.4).
func (e *Executor) ExecuteTemplate(ctx context.Context, sql string, args []any) ([]Row, error) {
	return e.run(ctx, sql, args...)
}

// ExecuteNamed runs a Custom Generator result: sql carries %(name)s
// placeholders, translated here to gorm's @name convention so a single map
// argument resolves every binding (§4.5 — the generator never interpolates
// values itself, this is the executor's binding step).
func (e *Executor) ExecuteNamed(ctx context.Context, sql string, params map[string]any) ([]Row, error) {
	translated := namedPlaceholder.ReplaceAllString(sql, "@$1")
	return e.run(ctx, translated, params)
}

func (e *Executor) run(ctx context.Context, sql string, args ...any) ([]Row, error) {
	db, cancel := e.pool.WithTimeout(ctx)
	defer cancel()

	rows, err := db.Raw(sql, args...).Rows()
	if err != nil {
		e.logger.Error("query failed", zap.Error(err), zap.String("sql", sql))
		return nil, types.NewError(types.ErrQueryError, "la consulta a la base de dades ha fallat").
			WithCause(err).WithRetryable(false)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, types.NewError(types.ErrQueryError, "no s'han pogut llegir les columnes del resultat").
			WithCause(err)
	}

	var out []Row
	for rows.Next() {
		raw := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, types.NewError(types.ErrQueryError, "no s'ha pogut llegir una fila del resultat").
				WithCause(err)
		}
		out = append(out, Row{Columns: columns, Values: raw})
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewError(types.ErrQueryError, "error en iterar el resultat de la consulta").
			WithCause(err)
	}

	if len(out) == 0 {
		return nil, types.NewError(types.ErrNoResultsFound, "la consulta no ha trobat cap resultat")
	}

	return out, nil
}

// Get returns the value of column in the row, or (nil, false) if absent.
func (r Row) Get(column string) (any, bool) {
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i], true
		}
	}
	return nil, false
}

func (r Row) String() string {
	return fmt.Sprintf("%v", r.Values)
}
