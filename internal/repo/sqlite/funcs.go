package sqlite

import (
	"database/sql/driver"
	"strings"

	msqlite "modernc.org/sqlite"
)

// SQLite's lower() only folds ASCII. golower applies Go's Unicode case
// mapping so search matches course.LikePattern, which lowercases in Go.
func init() {
	msqlite.MustRegisterDeterministicScalarFunction("golower", 1, goLower)
}

func goLower(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
