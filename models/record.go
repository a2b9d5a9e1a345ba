package models

// FieldKind is the JSON type a raw field had when it was first observed.
type FieldKind string

const (
	KindString FieldKind = "string"
	KindNumber FieldKind = "number"
	KindBool   FieldKind = "bool"
	KindList   FieldKind = "list"
	KindObject FieldKind = "object"
	KindNull   FieldKind = "null"
)

// RawField is a single attribute of a catalog entry, kept in the order the
// remote API returned it. Value is the textual form written to the raw table;
// an empty Value means null.
type RawField struct {
	Name  string
	Kind  FieldKind
	Value string
}

// RawRecord holds one unprocessed catalog entry as returned by the detail endpoint.
type RawRecord struct {
	ID     string
	Fields []RawField
}

// Get returns the value stored under name and whether the key was present.
func (r *RawRecord) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Field is one named, typed column slot of a Schema.
type Field struct {
	Name string
	Kind FieldKind
}

// Schema is the ordered column layout of the raw table. It is decided once per
// run and every record written afterwards is coerced into it.
type Schema struct {
	Fields []Field
}

// NewSchema declares a schema from column names. All slots are typed as strings.
func NewSchema(names ...string) *Schema {
	s := &Schema{Fields: make([]Field, 0, len(names))}
	for _, n := range names {
		s.Fields = append(s.Fields, Field{Name: n, Kind: KindString})
	}
	return s
}

// SchemaFromRecord locks the schema to the key set and key order of a reference record.
func SchemaFromRecord(r *RawRecord) *Schema {
	s := &Schema{Fields: make([]Field, 0, len(r.Fields))}
	seen := make(map[string]struct{}, len(r.Fields))
	for _, f := range r.Fields {
		if _, dup := seen[f.Name]; dup {
			continue
		}
		seen[f.Name] = struct{}{}
		s.Fields = append(s.Fields, Field{Name: f.Name, Kind: f.Kind})
	}
	return s
}

// Header returns the column names in slot order.
func (s *Schema) Header() []string {
	h := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		h[i] = f.Name
	}
	return h
}

// Row coerces r into the schema's slots. Keys the schema does not know are
// dropped and absent keys become the empty string.
func (s *Schema) Row(r *RawRecord) []string {
	values := make(map[string]string, len(r.Fields))
	for _, f := range r.Fields {
		if _, ok := values[f.Name]; !ok {
			values[f.Name] = f.Value
		}
	}
	row := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		row[i] = values[f.Name]
	}
	return row
}

// Table is the in-memory form of a delimited file at a pipeline boundary.
// The empty string is the null value.
type Table struct {
	Header []string
	Rows   [][]string
}

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}
