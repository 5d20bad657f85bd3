package sqlite

import (
	"database/sql/driver"
	"strings"

	"modernc.org/sqlite"
)

// SQLite's built-in lower() folds ASCII only. Searches compare
// lower(column) against a pattern lowered in Go, so lower() is replaced on
// every connection with Go's Unicode case mapping.
func init() {
	if err := sqlite.RegisterDeterministicScalarFunction("lower", 1, lower); err != nil {
		panic("sqlite: register lower: " + err.Error())
	}
}

func lower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
