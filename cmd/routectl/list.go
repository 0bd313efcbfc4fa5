package main

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type routeInfo struct {
	ID      string   `json:"id"`
	Pattern string   `json:"pattern"`
	Methods []string `json:"methods"`
	Weight  float64  `json:"weight"`
}

func newListCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print routes in dispatch order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.buildRouter(cmd.Context())
			if err != nil {
				return err
			}

			infos := make([]routeInfo, 0, len(r.Routes()))
			for _, route := range r.Routes() {
				infos = append(infos, routeInfo{
					ID:      route.ID(),
					Pattern: route.String(),
					Methods: route.Methods(),
					Weight:  route.Weight(),
				})
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			case "text":
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "WEIGHT\tMETHODS\tPATTERN\tID")
				for _, info := range infos {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						strconv.FormatFloat(info.Weight, 'g', -1, 64),
						strings.Join(info.Methods, "|"),
						info.Pattern,
						info.ID,
					)
				}
				return w.Flush()
			default:
				return fmt.Errorf("unsupported format: %s", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json)")
	return cmd
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
