package dataset

import "fmt"

// Merge outer-joins the tables of datasets on the row-key and unions their
// column metadata, with later datasets winning on a metadata name collision.
//
// Row order is first-seen: the rows of the first dataset in order, then keys
// unseen so far from each later dataset in file order. Cells for row/column
// combinations absent from a source are missing. Column names are checked for
// duplicates across the union, because independently valid datasets can still
// collide.
//
// A single dataset is passed through as-is. The returned Dataset owns its
// table; sources are never aliased or mutated in the multi-dataset case.
func Merge(datasets []*Dataset) (*Dataset, error) {
	if len(datasets) == 0 {
		return nil, fmt.Errorf("no input datasets to merge")
	}
	if len(datasets) == 1 {
		return datasets[0], nil
	}

	merged := &Table{
		KeyName: datasets[0].Table.KeyName,
		Rows:    make(map[string][]string),
	}
	meta := make(map[string]ColumnMeta)

	// Column layout: concatenation in dataset order. offsets[i] is the first
	// merged column index of datasets[i].
	offsets := make([]int, len(datasets))
	total := 0
	for i, ds := range datasets {
		offsets[i] = total
		merged.Columns = append(merged.Columns, ds.Table.Columns...)
		total += len(ds.Table.Columns)
		for name, m := range ds.ColumnMeta {
			meta[name] = m
		}
	}
	if err := checkDuplicates(merged.Columns); err != nil {
		return nil, err
	}

	for _, ds := range datasets {
		for _, key := range ds.Table.Keys {
			if _, ok := merged.Rows[key]; !ok {
				merged.Keys = append(merged.Keys, key)
				merged.Rows[key] = make([]string, total)
			}
		}
	}

	for i, ds := range datasets {
		off := offsets[i]
		for _, key := range ds.Table.Keys {
			copy(merged.Rows[key][off:], ds.Table.Rows[key])
		}
	}

	return &Dataset{
		SourcePath: "merged",
		Table:      merged,
		ColumnMeta: meta,
	}, nil
}
