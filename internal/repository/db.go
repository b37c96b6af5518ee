package repository

import (
	"database/sql"
)

// SQLExecutor is the subset of database operations shared by sql.DB and sql.Tx,
// letting a repository run unchanged inside or outside a transaction.
type SQLExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

var _ SQLExecutor = (*sql.DB)(nil)
var _ SQLExecutor = (*sql.Tx)(nil)
