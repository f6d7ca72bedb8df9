// Package pgresult provides buffered query results that can be decoded with a pgadapt.Transformer.
//
// Results come either from a pgx/v5 pgconn.Result or from a raw stream of PostgreSQL backend messages read by a
// Reader.
package pgresult

import (
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tim-schilling/pgadapt"
)

// Field describes one column of a Result.
type Field struct {
	Name        string
	DataTypeOID uint32
	Format      pgadapt.Format
}

// Result is a query result held in memory. It implements pgadapt.Result. A nil value in Rows is SQL NULL.
type Result struct {
	Fields     []Field
	Rows       [][][]byte
	CommandTag string
}

func (r *Result) NumFields() int {
	return len(r.Fields)
}

func (r *Result) NumRows() int {
	return len(r.Rows)
}

func (r *Result) FieldOID(col int) uint32 {
	return r.Fields[col].DataTypeOID
}

func (r *Result) FieldFormat(col int) pgadapt.Format {
	return r.Fields[col].Format
}

// FieldName returns the name of column col.
func (r *Result) FieldName(col int) string {
	return r.Fields[col].Name
}

func (r *Result) Value(row, col int) []byte {
	return r.Rows[row][col]
}

// FromPgconn converts a result read by pgconn. The row data is shared, not copied. Any error in pr.Err is not carried
// over and must be checked by the caller.
func FromPgconn(pr *pgconn.Result) *Result {
	r := &Result{
		Fields:     make([]Field, len(pr.FieldDescriptions)),
		Rows:       pr.Rows,
		CommandTag: pr.CommandTag.String(),
	}

	for i, fd := range pr.FieldDescriptions {
		r.Fields[i] = Field{
			Name:        fd.Name,
			DataTypeOID: fd.DataTypeOID,
			Format:      pgadapt.Format(fd.Format),
		}
	}

	return r
}
