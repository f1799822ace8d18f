package record

import "strconv"

// DataRow is the fixed-shape row of id,value,label sources.
type DataRow struct {
	ID        int     `csv:"id" json:"id"`
	Value     float64 `csv:"value" json:"value"`
	Label     string  `csv:"label" json:"label"`
	Processed bool    `csv:"-" json:"processed"`
}

// Record renders the row back into its string form.
func (d DataRow) Record() Record {
	r := Record{
		"id":    strconv.Itoa(d.ID),
		"value": strconv.FormatFloat(d.Value, 'f', -1, 64),
		"label": d.Label,
	}
	if d.Processed {
		r["processed"] = "true"
	}
	return r
}
