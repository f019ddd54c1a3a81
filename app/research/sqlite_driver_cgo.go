//go:build cgo_sqlite
// +build cgo_sqlite

package research

import (
	_ "github.com/mattn/go-sqlite3"
)

const SQLiteDriverName = "sqlite3"
