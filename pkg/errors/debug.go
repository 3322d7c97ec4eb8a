package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Report is the loggable view of a failure. Chain lists every wrapped error
// with its concrete type, outermost first. Postgres is set only when a
// database driver error is found somewhere in the chain.
type Report struct {
	Message string   `json:"message"`
	Code    Code     `json:"code,omitempty"`
	Details any      `json:"details,omitempty"`
	Chain   []string `json:"chain,omitempty"`

	Postgres *PostgresReport `json:"postgres,omitempty"`
}

// PostgresReport carries the driver fields useful when an order or lead
// write is rejected by a constraint.
type PostgresReport struct {
	Code       string `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Constraint string `json:"constraint,omitempty"`
}

// DumpError flattens err into a Report for structured logging.
func DumpError(err error) Report {
	if err == nil {
		return Report{}
	}

	r := Report{Message: err.Error()}

	if typed := As(err); typed != nil {
		r.Code = typed.Code()
		r.Details = typed.Details()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		r.Chain = append(r.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	r.Postgres = postgresReport(err)
	return r
}

func postgresReport(err error) *PostgresReport {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &PostgresReport{
			Code:       pgxErr.Code,
			Message:    pgxErr.Message,
			Detail:     pgxErr.Detail,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Constraint: pgxErr.ConstraintName,
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &PostgresReport{
			Code:       string(pqErr.Code),
			Message:    pqErr.Message,
			Detail:     pqErr.Detail,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Constraint: pqErr.Constraint,
		}
	}

	return nil
}
