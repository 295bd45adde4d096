// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/cinema/database"
)

// DimensionSummary describes one dimension of a database.
type DimensionSummary struct {
	Name   string   `json:"name"`
	Count  int      `json:"count"`
	Labels []string `json:"labels"`
}

// InspectResult summarizes a database index.
type InspectResult struct {
	Format     database.Format    `json:"format"`
	Items      int                `json:"items"`
	Layers     int                `json:"layers"`
	Depth      int                `json:"depth"`
	Luminance  int                `json:"luminance"`
	Dimensions []DimensionSummary `json:"dimensions"`
	Skipped    []string           `json:"skipped,omitempty"`
}

func (r *InspectResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "format      %s\n", r.Format)
	fmt.Fprintf(&b, "items       %d\n", r.Items)
	fmt.Fprintf(&b, "layers      %d\n", r.Layers)
	fmt.Fprintf(&b, "depth       %d\n", r.Depth)
	fmt.Fprintf(&b, "luminance   %d\n", r.Luminance)
	b.WriteString("dimensions\n")
	for _, d := range r.Dimensions {
		fmt.Fprintf(&b, "  %-8s  %3d  %s\n", d.Name, d.Count, strings.Join(d.Labels, " "))
	}
	fmt.Fprintf(&b, "skipped     %d\n", len(r.Skipped))
	for _, s := range r.Skipped {
		fmt.Fprintf(&b, "  %s\n", s)
	}
	return b.String()
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <database>",
		Short: "Summarize a database index",
		Long: `Parse the index of a Cinema database (data.csv or info.json) and
report its dimensions, item and layer counts and skipped entries.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runInspect(opts *RootOptions, root string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd)
	ix, err := database.Open(root)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeDatabase, "open database", err)
	}
	out.VerboseLog("Parsed %s under %s", ix.Format, ix.Root)
	return out.Success(summarize(ix))
}

func summarize(ix *database.Index) *InspectResult {
	r := &InspectResult{
		Format: ix.Format,
		Items:  len(ix.Entries),
		Layers: ix.Layers(),
	}
	for _, e := range ix.Entries {
		for _, src := range e.Sources {
			if src.Files.Depth != "" {
				r.Depth++
			}
			if src.Files.Luminance != "" {
				r.Luminance++
			}
		}
	}
	for _, d := range ix.Dimensions {
		r.Dimensions = append(r.Dimensions, DimensionSummary{
			Name:   d.Name,
			Count:  d.Len(),
			Labels: d.Labels,
		})
	}
	for _, s := range ix.Skipped {
		r.Skipped = append(r.Skipped, fmt.Sprintf("%s: %v", s.Where, s.Err))
	}
	return r
}
