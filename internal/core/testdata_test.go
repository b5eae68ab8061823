package core

import "fmt"

// rosterOf builds a dataset with a single "name" column.
func rosterOf(names ...string) *Dataset {
	ds := &Dataset{Columns: []string{"name"}}
	for _, n := range names {
		ds.Records = append(ds.Records, Record{Values: map[string]string{"name": n}})
	}
	return ds
}

// numberedRoster builds n students named s1..sn with an id column.
func numberedRoster(n int) *Dataset {
	ds := &Dataset{Columns: []string{"id", "name"}}
	for i := 1; i <= n; i++ {
		ds.Records = append(ds.Records, Record{Values: map[string]string{
			"id":   fmt.Sprint(i),
			"name": fmt.Sprintf("s%d", i),
		}})
	}
	return ds
}

func names(ds *Dataset) []string {
	out := make([]string, len(ds.Records))
	for i, rec := range ds.Records {
		out[i] = rec.Values["name"]
	}
	return out
}

func groups(ds *Dataset) []int {
	out := make([]int, len(ds.Records))
	for i, rec := range ds.Records {
		out[i] = rec.Group
	}
	return out
}

// membersOf returns the records of group g, in order.
func membersOf(ds *Dataset, g int) []Record {
	var out []Record
	for _, rec := range ds.Records {
		if rec.Group == g {
			out = append(out, rec)
		}
	}
	return out
}
