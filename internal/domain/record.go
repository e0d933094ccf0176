package domain

import (
	"sort"
	"strings"
)

// Field is a single named value within a Record.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record is one bibliographic or tabular entry gathered from a source.
// Field names are source-defined (BibTeX field names, CSV headers,
// spreadsheet column titles). A Record is immutable once built: the
// engine only reads it.
type Record struct {
	// SourceID is an opaque origin identifier, typically the file path
	// the record was parsed from.
	SourceID string `json:"source_id"`

	// OriginIndex is the record's position within its source, starting at 0.
	OriginIndex int `json:"origin_index"`

	fields []Field
	index  map[string]int
}

// NewRecord builds a Record from an ordered field list. Later fields with
// a name already seen overwrite the earlier value but keep the original
// position, so field order stays stable.
func NewRecord(sourceID string, originIndex int, fields []Field) Record {
	r := Record{
		SourceID:    sourceID,
		OriginIndex: originIndex,
		fields:      make([]Field, 0, len(fields)),
		index:       make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if i, ok := r.index[f.Name]; ok {
			r.fields[i].Value = f.Value
			continue
		}
		r.index[f.Name] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	return r
}

// NewRecordFromMap builds a Record from an unordered field map. Fields are
// ordered by name so that records built from the same map are identical;
// callers that care about source order use NewRecord.
func NewRecordFromMap(sourceID string, originIndex int, fields map[string]string) Record {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	ordered := make([]Field, 0, len(names))
	for _, name := range names {
		ordered = append(ordered, Field{Name: name, Value: fields[name]})
	}
	return NewRecord(sourceID, originIndex, ordered)
}

// Get returns the value of the named field, or the empty string when the
// field is absent. A missing field is never an error; absence is treated
// as an empty value.
func (r Record) Get(name string) string {
	if i, ok := r.index[name]; ok {
		return r.fields[i].Value
	}
	return ""
}

// Has reports whether the record carries the named field, even if empty.
func (r Record) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Fields returns a copy of the record's fields in source order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// FieldNames returns the field names in source order.
func (r Record) FieldNames() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}

// FieldMap returns the fields as a plain map, losing order.
func (r Record) FieldMap() map[string]string {
	m := make(map[string]string, len(r.fields))
	for _, f := range r.fields {
		m[f.Name] = f.Value
	}
	return m
}

// String returns a compact human-readable rendering used in reports and
// log output, e.g. `title="Web Testing Survey" doi="10.1/X"`.
func (r Record) String() string {
	var sb strings.Builder
	for i, f := range r.fields {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(f.Name)
		sb.WriteString(`="`)
		sb.WriteString(f.Value)
		sb.WriteString(`"`)
	}
	return sb.String()
}
