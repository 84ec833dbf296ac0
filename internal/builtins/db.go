package builtins

import (
	"database/sql"
	"fmt"
	"time"

	"sona/internal/object"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var (
	dbConnections  = map[int64]*sql.DB{}
	dbTransactions = map[int64]*sql.Tx{}
	dbNextHandle   int64
)

func init() {
	Register("dbConnect", builtinDBConnect)
	Register("dbQuery", builtinDBQuery)
	Register("dbExec", builtinDBExec)
	Register("dbBegin", builtinDBBegin)
	Register("dbCommit", builtinDBCommit)
	Register("dbRollback", builtinDBRollback)
	Register("dbClose", builtinDBClose)
}

func dbHandle(name string, arg object.Object) (int64, *object.Error) {
	num, ok := arg.(*object.Number)
	if !ok || !num.IsIntegral() {
		return 0, typeError(name, "a connection handle", arg)
	}
	return int64(num.Value), nil
}

func builtinDBConnect(args ...object.Object) object.Object {
	if len(args) != 2 {
		return arityError("dbConnect", 2, len(args))
	}
	driver, ok := args[0].(*object.String)
	if !ok {
		return typeError("dbConnect", "a driver name", args[0])
	}
	dsn, ok := args[1].(*object.String)
	if !ok {
		return typeError("dbConnect", "a connection string", args[1])
	}

	db, err := sql.Open(driver.Value, dsn.Value)
	if err != nil {
		return object.NewError(object.ErrUnhandledRuntime,
			"dbConnect: failed to open connection: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return object.NewError(object.ErrUnhandledRuntime,
			"dbConnect: failed to ping database: %v", err)
	}

	dbNextHandle++
	dbConnections[dbNextHandle] = db
	return &object.Number{Value: float64(dbNextHandle)}
}

func builtinDBQuery(args ...object.Object) object.Object {
	if len(args) < 2 {
		return object.NewError(object.ErrArityMismatch,
			"dbQuery expects at least 2 arguments, got %d", len(args))
	}
	id, errObj := dbHandle("dbQuery", args[0])
	if errObj != nil {
		return errObj
	}
	query, ok := args[1].(*object.String)
	if !ok {
		return typeError("dbQuery", "a SQL string", args[1])
	}

	db, found := dbConnections[id]
	if !found {
		return object.NewError(object.ErrUnhandledRuntime, "dbQuery: invalid connection handle")
	}

	params := queryParams(args[2:])

	var rows *sql.Rows
	var err error
	if tx, inTx := dbTransactions[id]; inTx {
		rows, err = tx.Query(query.Value, params...)
	} else {
		rows, err = db.Query(query.Value, params...)
	}
	if err != nil {
		return object.NewError(object.ErrUnhandledRuntime, "dbQuery: %v", err)
	}
	defer rows.Close()

	return renderRows(rows)
}

func builtinDBExec(args ...object.Object) object.Object {
	if len(args) < 2 {
		return object.NewError(object.ErrArityMismatch,
			"dbExec expects at least 2 arguments, got %d", len(args))
	}
	id, errObj := dbHandle("dbExec", args[0])
	if errObj != nil {
		return errObj
	}
	query, ok := args[1].(*object.String)
	if !ok {
		return typeError("dbExec", "a SQL string", args[1])
	}

	db, found := dbConnections[id]
	if !found {
		return object.NewError(object.ErrUnhandledRuntime, "dbExec: invalid connection handle")
	}

	params := queryParams(args[2:])

	var result sql.Result
	var err error
	if tx, inTx := dbTransactions[id]; inTx {
		result, err = tx.Exec(query.Value, params...)
	} else {
		result, err = db.Exec(query.Value, params...)
	}
	if err != nil {
		return object.NewError(object.ErrUnhandledRuntime, "dbExec: %v", err)
	}

	affected, _ := result.RowsAffected()
	lastID, _ := result.LastInsertId()

	res := &object.Map{Pairs: map[object.MapKey]object.MapPair{}}
	res.Put(&object.String{Value: "rowsAffected"}, &object.Number{Value: float64(affected)})
	res.Put(&object.String{Value: "lastInsertId"}, &object.Number{Value: float64(lastID)})
	return res
}

func builtinDBBegin(args ...object.Object) object.Object {
	if len(args) != 1 {
		return arityError("dbBegin", 1, len(args))
	}
	id, errObj := dbHandle("dbBegin", args[0])
	if errObj != nil {
		return errObj
	}

	db, found := dbConnections[id]
	if !found {
		return object.NewError(object.ErrUnhandledRuntime, "dbBegin: invalid connection handle")
	}
	tx, err := db.Begin()
	if err != nil {
		return object.NewError(object.ErrUnhandledRuntime, "dbBegin: %v", err)
	}
	dbTransactions[id] = tx
	return args[0]
}

func builtinDBCommit(args ...object.Object) object.Object {
	if len(args) != 1 {
		return arityError("dbCommit", 1, len(args))
	}
	id, errObj := dbHandle("dbCommit", args[0])
	if errObj != nil {
		return errObj
	}

	tx, found := dbTransactions[id]
	if !found {
		return object.NewError(object.ErrUnhandledRuntime, "dbCommit: no open transaction")
	}
	if err := tx.Commit(); err != nil {
		return object.NewError(object.ErrUnhandledRuntime, "dbCommit: %v", err)
	}
	delete(dbTransactions, id)
	return args[0]
}

func builtinDBRollback(args ...object.Object) object.Object {
	if len(args) != 1 {
		return arityError("dbRollback", 1, len(args))
	}
	id, errObj := dbHandle("dbRollback", args[0])
	if errObj != nil {
		return errObj
	}

	tx, found := dbTransactions[id]
	if !found {
		return object.NewError(object.ErrUnhandledRuntime, "dbRollback: no open transaction")
	}
	if err := tx.Rollback(); err != nil {
		return object.NewError(object.ErrUnhandledRuntime, "dbRollback: %v", err)
	}
	delete(dbTransactions, id)
	return args[0]
}

func builtinDBClose(args ...object.Object) object.Object {
	if len(args) != 1 {
		return arityError("dbClose", 1, len(args))
	}
	id, errObj := dbHandle("dbClose", args[0])
	if errObj != nil {
		return errObj
	}

	if tx, found := dbTransactions[id]; found {
		tx.Rollback()
		delete(dbTransactions, id)
	}
	if db, found := dbConnections[id]; found {
		db.Close()
		delete(dbConnections, id)
	}
	return object.NIL
}

// queryParams lowers runtime values to driver-friendly host values.
func queryParams(args []object.Object) []interface{} {
	params := make([]interface{}, len(args))
	for i, arg := range args {
		switch arg := arg.(type) {
		case *object.Number:
			if arg.IsIntegral() {
				params[i] = int64(arg.Value)
			} else {
				params[i] = arg.Value
			}
		case *object.String:
			params[i] = arg.Value
		case *object.Boolean:
			params[i] = arg.Value
		case *object.Nil:
			params[i] = nil
		default:
			params[i] = arg.Inspect()
		}
	}
	return params
}

func renderRows(rows *sql.Rows) object.Object {
	columns, _ := rows.Columns()
	var resultRows []object.Object

	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return object.NewError(object.ErrUnhandledRuntime, "dbQuery: scan: %v", err)
		}

		rowMap := &object.Map{Pairs: map[object.MapKey]object.MapPair{}}
		for i, col := range columns {
			rowMap.Put(&object.String{Value: col}, columnValue(values[i]))
		}
		resultRows = append(resultRows, rowMap)
	}
	if err := rows.Err(); err != nil {
		return object.NewError(object.ErrUnhandledRuntime, "dbQuery: %v", err)
	}
	return &object.List{Elements: resultRows}
}

func columnValue(v interface{}) object.Object {
	switch x := v.(type) {
	case nil:
		return object.NIL
	case int64:
		return &object.Number{Value: float64(x)}
	case float64:
		return &object.Number{Value: x}
	case []byte:
		return &object.String{Value: string(x)}
	case string:
		return &object.String{Value: x}
	case bool:
		if x {
			return object.TRUE
		}
		return object.FALSE
	case time.Time:
		return &object.String{Value: x.Format(time.RFC3339)}
	default:
		return &object.String{Value: fmt.Sprintf("%v", v)}
	}
}
