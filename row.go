package pgadapt

// RowValues iterates over the decoded values of one result row in column order. It is returned by
// Transformer.DecodeRow. NULL columns yield nil without invoking a decoder.
//
//	rv, err := t.DecodeRow(result, 0)
//	if err != nil {
//		return err
//	}
//	for rv.Next() {
//		fmt.Println(rv.Col(), rv.Value())
//	}
//	if rv.Err() != nil {
//		return rv.Err()
//	}
type RowValues struct {
	result   Result
	row      int
	decoders []DecodeFunc

	col   int
	value any
	err   error
}

// Next decodes the next column. It returns false when all columns have been decoded or a decoder failed.
func (rv *RowValues) Next() bool {
	if rv.err != nil || rv.col >= len(rv.decoders) {
		return false
	}

	rv.col++
	rv.value = nil
	if rv.col >= len(rv.decoders) {
		return false
	}

	src := rv.result.Value(rv.row, rv.col)
	if src == nil {
		return true
	}

	v, err := rv.decoders[rv.col](src)
	if err != nil {
		rv.err = &DecodeError{
			Col:    rv.col,
			OID:    rv.result.FieldOID(rv.col),
			Format: rv.result.FieldFormat(rv.col),
			Err:    err,
		}
		return false
	}
	rv.value = v
	return true
}

// Value returns the value decoded by the last call to Next.
func (rv *RowValues) Value() any {
	return rv.value
}

// Col returns the column index of the value returned by Value.
func (rv *RowValues) Col() int {
	return rv.col
}

// Len returns the number of columns in the row.
func (rv *RowValues) Len() int {
	return len(rv.decoders)
}

// Err returns the error that stopped the iteration, if any.
func (rv *RowValues) Err() error {
	return rv.err
}

// Values decodes all remaining columns.
func (rv *RowValues) Values() ([]any, error) {
	remaining := len(rv.decoders) - rv.col - 1
	if remaining < 0 {
		remaining = 0
	}

	values := make([]any, 0, remaining)
	for rv.Next() {
		values = append(values, rv.value)
	}
	if rv.err != nil {
		return nil, rv.err
	}
	return values, nil
}
