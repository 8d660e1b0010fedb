// Package report renders clustering and quality-evaluation results as
// tables, JSON, or YAML for the dupcluster CLI.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/mapx"
)

// ErrUnknownFormat is returned when Render is called with a format other
// than "text", "json", or "yaml".
var ErrUnknownFormat = errors.New("report: unknown format")

// ClusterResult is the serializable shape of one equivalence class.
type ClusterResult struct {
	Members []string `json:"members" yaml:"members"`
}

// Result is the full output of a clustering run.
type Result struct {
	Clusters []ClusterResult `json:"clusters" yaml:"clusters"`
	AUL      *float64        `json:"aul,omitempty" yaml:"aul,omitempty"`
	Warning  string          `json:"warning,omitempty" yaml:"warning,omitempty"`
}

// FromClusters builds a Result from raw label clusters, sorting members
// within each cluster and clusters by their first member for stable
// output across runs with the same input. Members are de-duplicated
// defensively; a well-formed Clusterer never emits a duplicate within a
// class, but the report layer should not depend on that.
func FromClusters(clusters [][]string) Result {
	out := make([]ClusterResult, len(clusters))

	for i, members := range clusters {
		sorted := mapx.Unique(members)
		sort.Strings(sorted)
		out[i] = ClusterResult{Members: sorted}
	}

	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Members) == 0 || len(out[j].Members) == 0 {
			return len(out[i].Members) > len(out[j].Members)
		}

		return out[i].Members[0] < out[j].Members[0]
	})

	return Result{Clusters: out}
}

// Render writes r to w in the given format: "text" (a colorized table),
// "json", or "yaml". Returns ErrUnknownFormat for anything else.
func Render(w io.Writer, r Result, format string) error {
	switch format {
	case "", "text":
		return renderTable(w, r)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("report: encoding json: %w", err)
		}

		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()

		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("report: encoding yaml: %w", err)
		}

		return nil
	default:
		return ErrUnknownFormat
	}
}

func renderTable(w io.Writer, r Result) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Size", "Members"})

	for i, c := range r.Clusters {
		t.AppendRow(table.Row{i, len(c.Members), c.Members})
	}

	t.Render()

	if r.AUL != nil {
		bold := color.New(color.Bold)
		bold.Fprintf(w, "AUL: %.4f\n", *r.AUL)
	}

	if r.Warning != "" {
		color.New(color.FgYellow).Fprintf(w, "warning: %s\n", r.Warning)
	}

	return nil
}
