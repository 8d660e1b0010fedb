// Package commands implements CLI command handlers for dupcluster.
package commands

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/hashkit"
	"github.com/Sumatoshi-tech/dupcluster/pkg/cluster"
)

// Record is one line of JSON-Lines input: a label (optional, derived from
// text when absent), the text to cluster, and an optional ground-truth
// positive flag used by the score command.
type Record struct {
	Label    string `json:"label"`
	Text     string `json:"text"`
	Positive bool   `json:"positive"`
}

// ReadRecords decodes newline-delimited JSON records from r, deriving a
// label for any record whose Label is empty.
func ReadRecords(r io.Reader, family hashkit.Family, seed uint64) ([]Record, error) {
	decoder := json.NewDecoder(bufio.NewReader(r))

	var records []Record

	for {
		var rec Record

		err := decoder.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}

		if rec.Label == "" {
			label, derr := cluster.DeriveLabel(rec.Text, family, seed)
			if derr != nil {
				return nil, fmt.Errorf("deriving label: %w", derr)
			}

			rec.Label = label
		}

		records = append(records, rec)
	}

	return records, nil
}
