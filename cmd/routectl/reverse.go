package main

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"github.com/vitalvas/reroute/mux"
)

var errNoRoute = errors.New("no route renders this action")

func newReverseCmd(a *app) *cobra.Command {
	var (
		id     string
		query  map[string]string
		values map[string]string
	)

	cmd := &cobra.Command{
		Use:   "reverse ACTION [CLASS]",
		Short: "Render the URL of an action",
		Long: `Run reverse dispatch for an action. CLASS selects the subject class;
with --id the subject is the record of that class loaded from the records
database.

Examples:
  routectl reverse login
  routectl reverse list Widget --query page=2
  routectl reverse edit Widget --id 42`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.buildRouter(cmd.Context())
			if err != nil {
				return err
			}

			action := args[0]

			var subject any
			if len(args) == 2 {
				subject = args[1]
			}
			if id != "" {
				if len(args) < 2 {
					return errors.New("--id requires a CLASS")
				}
				if r.Resolver() == nil {
					return errors.New("--id requires db.path")
				}
				model, err := r.Resolver().Resolve(cmd.Context(), r.Types().Canonical(args[1]), id)
				if err != nil {
					return err
				}
				subject = model
			}

			opts := &mux.ReverseOptions{Query: url.Values{}}
			for k, v := range query {
				opts.Query.Set(k, v)
			}
			if len(values) > 0 {
				opts.Values = make(map[string]any, len(values))
				for k, v := range values {
					opts.Values[k] = v
				}
			}

			u, err := r.GetRoute(action, subject, opts)
			if err != nil {
				return err
			}
			if u == "" {
				return fmt.Errorf("%s: %w", action, errNoRoute)
			}

			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "load the subject record with this id or slug")
	cmd.Flags().StringToStringVar(&query, "query", nil, "query parameters to append (k=v)")
	cmd.Flags().StringToStringVar(&values, "value", nil, "extra placeholder values (k=v)")
	return cmd
}
