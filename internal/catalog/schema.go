package catalog

import (
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cuejson "cuelang.org/go/encoding/json"
)

// catalogSchema describes the specification payload. Rows are open so extra
// sheet columns are tolerated; the known columns are typed.
const catalogSchema = `
#Cell: string | number | null

#Row: {
	Linea?:   #Cell
	Tipo?:    string | null
	Puesto?:  #Cell
	Fixture?: #Cell
	Punto?:   #Cell
	Min?:     #Cell
	Max?:     #Cell
	Min_Seg?: #Cell
	Max_Seg?: #Cell
	Ciclos?:  #Cell
	...
}

#Catalog: [...#Row]
`

// payloadFilename labels positions in schema errors.
const payloadFilename = "specs.json"

// SchemaError reports a specification payload that does not match the schema.
type SchemaError struct {
	Message string
	Pos     token.Pos
}

func (e *SchemaError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("malformed specification payload: %s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return fmt.Sprintf("malformed specification payload: %s", e.Message)
}

// Decode checks payload against the catalog schema and decodes every row.
// Either every row is returned or an error is; never a partial table.
func Decode(payload []byte) ([]Row, error) {
	if err := checkSchema(payload); err != nil {
		return nil, err
	}

	var wire []wireRow
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, &SchemaError{Message: err.Error()}
	}

	rows := make([]Row, len(wire))
	for i, w := range wire {
		rows[i] = w.row()
	}
	return rows, nil
}

func checkSchema(payload []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(catalogSchema, cue.Filename("catalog.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}

	expr, err := cuejson.Extract(payloadFilename, payload)
	if err != nil {
		return schemaError(err)
	}
	dropRepeatedKeys(expr)

	data := ctx.BuildExpr(expr)
	if err := data.Err(); err != nil {
		return schemaError(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Catalog")).Unify(data)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return schemaError(err)
	}
	return nil
}

// dropRepeatedKeys keeps only the last occurrence of each key in every
// object, the same way encoding/json resolves a repeated column.
func dropRepeatedKeys(expr ast.Expr) {
	ast.Walk(expr, func(n ast.Node) bool {
		st, ok := n.(*ast.StructLit)
		if !ok {
			return true
		}
		last := map[string]int{}
		for i, d := range st.Elts {
			if name, ok := fieldName(d); ok {
				last[name] = i
			}
		}
		kept := st.Elts[:0]
		for i, d := range st.Elts {
			if name, ok := fieldName(d); ok && last[name] != i {
				continue
			}
			kept = append(kept, d)
		}
		st.Elts = kept
		return true
	}, nil)
}

func fieldName(d ast.Decl) (string, bool) {
	f, ok := d.(*ast.Field)
	if !ok {
		return "", false
	}
	name, _, err := ast.LabelName(f.Label)
	return name, err == nil
}

// schemaError keeps the first CUE error with its position.
func schemaError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &SchemaError{Message: err.Error()}
	}

	first := errs[0]
	se := &SchemaError{Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		se.Pos = positions[0]
	}
	return se
}
