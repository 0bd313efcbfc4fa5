package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the cached route table",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "warm",
			Short: "Build the route table from the definitions and store it in the cache",
			Long: "Build the route table from the definition file and write its snapshot to the cache,\n" +
				"replacing any cached table and restarting its TTL.",
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				store := a.cacheStore()
				if store == nil {
					return errors.New("cache.redis.addr is not configured")
				}

				r, file, version, err := a.newRouter()
				if err != nil {
					return err
				}
				if err := file.Apply(r); err != nil {
					return err
				}

				blob, err := r.Snapshot(version)
				if err != nil {
					return err
				}
				if err := store.Put(cmd.Context(), a.cfg.Cache.Key, blob); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "cached %s\n", a.cfg.Cache.Key)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove the cached route table",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				store := a.cacheStore()
				if store == nil {
					return errors.New("cache.redis.addr is not configured")
				}
				if err := store.Delete(cmd.Context(), a.cfg.Cache.Key); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", a.cfg.Cache.Key)
				return nil
			},
		},
	)

	return cmd
}
