//go:build !cgo_sqlite
// +build !cgo_sqlite

package research

import (
	_ "modernc.org/sqlite"
)

const SQLiteDriverName = "sqlite"
