// Package record parses uploaded data files into ordered banner records.
// The accepted shape is a JSON array of objects; comments and trailing
// commas are tolerated so hand-maintained files survive.
package record

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"

	"github.com/goliatone/go-bannergen/pkg/banner"
)

// Parse decodes a record file into the ordered batch it describes. The full
// sequence loads atomically: any malformed row fails the whole file.
func Parse(data []byte) (banner.Batch, error) {
	if len(data) == 0 {
		return banner.Batch{}, fmt.Errorf("record: data file is empty")
	}

	var rows []map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &rows); err != nil {
		return banner.Batch{}, fmt.Errorf("record: decode data file: %w", err)
	}

	records := make([]banner.Record, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			records = append(records, banner.Record{})
			continue
		}
		records = append(records, banner.Record(row))
	}

	return banner.Batch{Records: records}, nil
}
