package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE classes and codes the API reacts to.
const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
	sqlStateCheckViolation      = "23514"
	sqlStateNotNullViolation    = "23502"
	sqlStateDataExceptionClass  = "22"
)

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

// Dump flattens err for logging: the typed code, every link of the chain and
// the Postgres diagnostics from either driver.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	d.fillPG(err)
	return d
}

func (d *ErrorDump) fillPG(err error) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.PGCode = pgxErr.Code
		d.PGConstraint = pgxErr.ConstraintName
		d.PGTable = pgxErr.TableName
		d.PGColumn = pgxErr.ColumnName
		d.PGDetail = pgxErr.Detail
		d.PGMessage = pgxErr.Message
		return
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.PGCode = string(pqErr.Code)
		d.PGConstraint = pqErr.Constraint
		d.PGTable = pqErr.Table
		d.PGColumn = pqErr.Column
		d.PGDetail = pqErr.Detail
		d.PGMessage = pqErr.Message
	}
}

// SQLState returns the SQLSTATE carried anywhere in err's chain.
func SQLState(err error) string {
	var d ErrorDump
	d.fillPG(err)
	return d.PGCode
}

// WrapDB wraps a storage failure with the code its cause deserves: constraint
// violations are the caller's fault, anything else is the database being
// unavailable or misbehaving. SQLite messages are recognised too.
func WrapDB(err error, message string) *Error {
	return Wrap(dbCode(err), err, message)
}

func dbCode(err error) Code {
	state := SQLState(err)
	switch {
	case state == sqlStateUniqueViolation, state == sqlStateForeignKeyViolation:
		return CodeConflict
	case state == sqlStateCheckViolation, state == sqlStateNotNullViolation,
		strings.HasPrefix(state, sqlStateDataExceptionClass):
		return CodeValidation
	case state != "":
		return CodeDependency
	}

	if err == nil {
		return CodeDependency
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return CodeConflict
	case strings.Contains(msg, "CHECK constraint failed"), strings.Contains(msg, "NOT NULL constraint failed"):
		return CodeValidation
	}
	return CodeDependency
}
