package core

import (
	"maps"
	"slices"
	"strconv"
)

// GroupColumn is the column added to every record by grouping.
const GroupColumn = "GROUP"

// Record is one row of a roster: column name to cell value.
//
// Group is 0 until the record has been through [Grouper.Group].
type Record struct {
	Values map[string]string
	Group  int
}

// Get returns the value for a column and whether the record has it.
// Once a group is assigned, GROUP reports the group number even if the
// source file carried its own GROUP column.
func (r Record) Get(col string) (string, bool) {
	if col == GroupColumn && r.Group > 0 {
		return strconv.Itoa(r.Group), true
	}
	v, ok := r.Values[col]
	return v, ok
}

// Dataset is an ordered sequence of records sharing a column schema.
//
// Columns carries the source column order, which maps cannot.
type Dataset struct {
	Columns []string
	Records []Record
	Grouped bool
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Headers returns the display/export column order.
func (d *Dataset) Headers() []string {
	if d == nil {
		return nil
	}
	headers := slices.Clone(d.Columns)
	if d.Grouped && !slices.Contains(headers, GroupColumn) {
		headers = append(headers, GroupColumn)
	}
	return headers
}

// Clone returns a deep copy; records do not share value maps.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := &Dataset{
		Columns: slices.Clone(d.Columns),
		Records: make([]Record, len(d.Records)),
		Grouped: d.Grouped,
	}
	for i, rec := range d.Records {
		out.Records[i] = Record{Values: maps.Clone(rec.Values), Group: rec.Group}
	}
	return out
}

// MaxGroup returns the highest assigned group number, 0 if ungrouped.
func (d *Dataset) MaxGroup() int {
	highest := 0
	if d == nil {
		return highest
	}
	for _, rec := range d.Records {
		if rec.Group > highest {
			highest = rec.Group
		}
	}
	return highest
}

// GroupCount returns the number of distinct groups in use.
func (d *Dataset) GroupCount() int {
	if d == nil {
		return 0
	}
	seen := make(map[int]struct{})
	for _, rec := range d.Records {
		if rec.Group > 0 {
			seen[rec.Group] = struct{}{}
		}
	}
	return len(seen)
}

// newDataset builds a dataset from a header and positional rows.
// Repeated header names keep their first position; the later value wins.
func newDataset(header []string) *Dataset {
	ds := &Dataset{}
	for _, h := range header {
		if !slices.Contains(ds.Columns, h) {
			ds.Columns = append(ds.Columns, h)
		}
	}
	return ds
}
