package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vitalvas/reroute/mux"
)

func newMatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "match METHOD PATH",
		Short: "Run forward dispatch for a request",
		Long: `Match a request against the route table and print the selected
route with its processed arguments. Model segments resolve through the
records database when db.path is configured.

Examples:
  routectl match GET widget/42/edit
  routectl match POST /app/login`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.buildRouter(cmd.Context())
			if err != nil {
				return err
			}

			method, path := strings.ToUpper(args[0]), args[1]

			var match mux.RouteMatch
			if !r.Match(path, method, &match) {
				return fmt.Errorf("%s %s: %w", method, path, match.MatchErr)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "route: %s\n", match.Route.ID())
			fmt.Fprintf(out, "pattern: %s\n", match.Route.String())

			if err := match.Process(cmd.Context()); err != nil {
				return fmt.Errorf("process arguments: %w", err)
			}

			writeValues(out, match.Route, match.Named())
			if args := match.Args(); len(args) > 0 {
				parts := make([]string, len(args))
				for i, arg := range args {
					parts[i] = formatValue(arg)
				}
				fmt.Fprintf(out, "arguments: %s\n", strings.Join(parts, " "))
			}

			return nil
		},
	}
}

// writeValues prints the named variables of route in pattern order.
func writeValues(out io.Writer, route *mux.Route, named map[string]any) {
	for _, name := range route.Pattern().VarNames() {
		value, ok := named[name]
		if !ok || value == nil {
			continue
		}
		fmt.Fprintf(out, "%s = %s\n", name, formatValue(value))
	}
}

func formatValue(v any) string {
	switch value := v.(type) {
	case mux.Model:
		return value.ModelType() + ":" + value.ModelID()
	case []string:
		return strings.Join(value, ",")
	default:
		return fmt.Sprint(value)
	}
}
