package models

import (
	"bytes"
	"encoding/json"
)

// CallRecord is the per-function aggregation of its filtered caller set.
// Usages is lexicographically sorted ascending; duplicates are retained,
// so CallCount always equals len(Usages).
type CallRecord struct {
	CallCount int      `json:"CallCount"`
	Usages    []string `json:"Usages"`
}

// ResultSet maps canonical function names to their call records. Keys are
// unique and iteration follows insertion order, which is also the order
// the keys appear in the serialized document.
type ResultSet struct {
	order   []string
	records map[string]CallRecord
}

// NewResultSet creates an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{
		records: make(map[string]CallRecord),
	}
}

// Insert adds or replaces the record for name and reports whether an
// existing record was overwritten. On overwrite the name keeps its
// original position (last write wins for the record, not the ordering).
func (rs *ResultSet) Insert(name string, record CallRecord) bool {
	_, exists := rs.records[name]
	if !exists {
		rs.order = append(rs.order, name)
	}
	rs.records[name] = record
	return exists
}

// Get returns the record for name, if present.
func (rs *ResultSet) Get(name string) (CallRecord, bool) {
	record, ok := rs.records[name]
	return record, ok
}

// Len returns the number of records.
func (rs *ResultSet) Len() int {
	return len(rs.records)
}

// Names returns the record names in insertion order.
func (rs *ResultSet) Names() []string {
	names := make([]string, len(rs.order))
	copy(names, rs.order)
	return names
}

// MarshalJSON renders the result set as a JSON object with keys in
// insertion order. Symbol names embed characters like & and <>, so
// nothing is HTML-escaped.
func (rs *ResultSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range rs.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeNoEscape(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := encodeNoEscape(rs.records[name])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeNoEscape marshals v without HTML escaping and without the
// trailing newline json.Encoder appends.
func encodeNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
