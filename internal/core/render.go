package core

// Grid is a dataset projected for display: one header row and body rows
// of equal width.
type Grid struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Empty reports whether the grid has nothing to show.
func (g Grid) Empty() bool {
	return len(g.Headers) == 0
}

// Render builds the display grid for ds. Headers are the columns present
// on the first record; cells a record lacks render as "".
func Render(ds *Dataset) Grid {
	if ds.Len() == 0 {
		return Grid{}
	}

	first := ds.Records[0]
	var headers []string
	for _, col := range ds.Headers() {
		if _, ok := first.Get(col); ok {
			headers = append(headers, col)
		}
	}

	rows := make([][]string, len(ds.Records))
	for i, rec := range ds.Records {
		row := make([]string, len(headers))
		for j, col := range headers {
			row[j], _ = rec.Get(col)
		}
		rows[i] = row
	}

	return Grid{Headers: headers, Rows: rows}
}
