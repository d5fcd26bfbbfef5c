package evaluator

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/funvibe/hetu/internal/config"
	"github.com/funvibe/hetu/internal/pipeline"
)

// dbLibSource declares the SQLite-backed Database external class. Unlike the
// wrapper classes, Database is bound to a host namespace object, so member
// access on its instances routes through the four-operation protocol.
const dbLibSource = `
external class Database {
  construct(path: String)
  fun exec(statement: String): num
  fun query(statement: String): List
  fun close
}
`

// databaseNamespace implements ExternalNamespace over SQLite connections.
// Instance handles are UUID strings keying the open connections.
type databaseNamespace struct {
	mu    sync.Mutex
	conns map[string]*sql.DB
}

func newDatabaseNamespace() *databaseNamespace {
	return &databaseNamespace{conns: make(map[string]*sql.DB)}
}

// RegisterDatabaseModule binds the Database external namespace and evaluates
// the extern declarations.
func RegisterDatabaseModule(i *Interpreter) error {
	i.BindExternalNamespace("Database", newDatabaseNamespace())
	_, err := i.EvalSource(dbLibSource, "<db>", pipeline.StyleLibrary, nil)
	return err
}

func (d *databaseNamespace) conn(handle interface{}) (*sql.DB, error) {
	key, ok := handle.(string)
	if !ok {
		return nil, fmt.Errorf("invalid database handle")
	}
	d.mu.Lock()
	db, ok := d.conns[key]
	d.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("database is closed")
	}
	return db, nil
}

func (d *databaseNamespace) Fetch(name string) (Object, error) {
	if name != config.ConstructorName {
		return nil, fmt.Errorf("undefined member '%s' on Database", name)
	}
	return &Function{Native: func(receiver Object, args []Object, named map[string]Object) Object {
		path := ":memory:"
		if len(args) > 0 {
			s, ok := args[0].(*String)
			if !ok {
				return newError("Database expects a path String, got %s", runtimeTypeName(args[0]))
			}
			path = s.Value
		}
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return newError("cannot open database '%s': %v", path, err)
		}
		handle := uuid.NewString()
		d.mu.Lock()
		d.conns[handle] = db
		d.mu.Unlock()
		return &HostObject{Value: handle}
	}}, nil
}

func (d *databaseNamespace) Assign(name string, value Object) error {
	return fmt.Errorf("cannot assign '%s' on Database", name)
}

func (d *databaseNamespace) InstanceFetch(handle interface{}, name string) (Object, error) {
	switch name {
	case "exec":
		return &Function{Native: func(receiver Object, args []Object, named map[string]Object) Object {
			db, err := d.conn(handle)
			if err != nil {
				return newError("%v", err)
			}
			stmt, goArgs, argErr := sqlArgs(args)
			if argErr != nil {
				return argErr
			}
			result, execErr := db.Exec(stmt, goArgs...)
			if execErr != nil {
				return newError("exec failed: %v", execErr)
			}
			affected, _ := result.RowsAffected()
			return &Number{Value: float64(affected)}
		}}, nil
	case "query":
		return &Function{Native: func(receiver Object, args []Object, named map[string]Object) Object {
			db, err := d.conn(handle)
			if err != nil {
				return newError("%v", err)
			}
			stmt, goArgs, argErr := sqlArgs(args)
			if argErr != nil {
				return argErr
			}
			rows, queryErr := db.Query(stmt, goArgs...)
			if queryErr != nil {
				return newError("query failed: %v", queryErr)
			}
			defer rows.Close()
			return rowsToList(rows)
		}}, nil
	case "close":
		return &Function{Native: func(receiver Object, args []Object, named map[string]Object) Object {
			key, ok := handle.(string)
			if !ok {
				return newError("invalid database handle")
			}
			d.mu.Lock()
			db, open := d.conns[key]
			delete(d.conns, key)
			d.mu.Unlock()
			if open {
				db.Close()
			}
			return NULL
		}}, nil
	}
	return nil, fmt.Errorf("undefined member '%s' on Database instance", name)
}

func (d *databaseNamespace) InstanceAssign(handle interface{}, name string, value Object) error {
	return fmt.Errorf("cannot assign '%s' on Database instance", name)
}

// sqlArgs splits a native call into the statement text and driver arguments.
func sqlArgs(args []Object) (string, []interface{}, *Error) {
	if len(args) < 1 {
		return "", nil, newError("expected a statement String")
	}
	stmt, ok := args[0].(*String)
	if !ok {
		return "", nil, newError("expected a statement String, got %s", runtimeTypeName(args[0]))
	}
	goArgs := make([]interface{}, 0, len(args)-1)
	for _, arg := range args[1:] {
		switch v := arg.(type) {
		case *Null:
			goArgs = append(goArgs, nil)
		case *Boolean:
			goArgs = append(goArgs, v.Value)
		case *Number:
			if v.Value == float64(int64(v.Value)) {
				goArgs = append(goArgs, int64(v.Value))
			} else {
				goArgs = append(goArgs, v.Value)
			}
		case *String:
			goArgs = append(goArgs, v.Value)
		default:
			return "", nil, newError("cannot bind %s as a SQL parameter", runtimeTypeName(arg))
		}
	}
	return stmt.Value, goArgs, nil
}

// rowsToList converts a result set to a list of maps, one per row, keyed by
// column name in result order.
func rowsToList(rows *sql.Rows) Object {
	columns, err := rows.Columns()
	if err != nil {
		return newError("query failed: %v", err)
	}

	var out []Object
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return newError("scan failed: %v", err)
		}

		row := &Map{}
		for i, col := range columns {
			row.Set(&String{Value: col}, sqlValueToObject(values[i]))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return newError("query failed: %v", err)
	}
	return &List{Elements: out}
}

func sqlValueToObject(v interface{}) Object {
	switch value := v.(type) {
	case nil:
		return NULL
	case bool:
		return nativeBoolToBooleanObject(value)
	case int64:
		return &Number{Value: float64(value)}
	case float64:
		return &Number{Value: value}
	case string:
		return &String{Value: value}
	case []byte:
		return &String{Value: string(value)}
	}
	return &String{Value: fmt.Sprintf("%v", v)}
}
