package main

import (
	"fmt"

	"catalogfeed/internal/app"
	"catalogfeed/internal/settings"
	"catalogfeed/internal/stores"
	"catalogfeed/internal/worker/processors/export"

	"github.com/spf13/cobra"
)

func publishCmd(current func() *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Generate the feed artifact and upload it",
		Long: `Generate the feed artifact of one store and upload it to the store's feed.
With --all every store is published concurrently.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			all, _ := cmd.Flags().GetBool("all")
			if all {
				results := export.New(a.Publisher, a.Registry, a.Logger).ExportAll(ctx)
				failed := 0
				for _, r := range results {
					if r.Err != nil {
						failed++
						fmt.Fprintf(out, "%-10s FAILED  %v\n", r.Store.Code, r.Err)
						continue
					}
					fmt.Fprintf(out, "%-10s OK      %d products -> feed %s\n", r.Store.Code, r.Run.RowCount, r.Run.Identity.ID)
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d stores failed", failed, len(results))
				}
				return nil
			}

			store, _ := cmd.Flags().GetString("store")
			run, err := a.Publisher.Publish(ctx, stores.Scope(store))
			if err != nil {
				return fmt.Errorf("publish failed at %s: %w", run.Stage, err)
			}
			fmt.Fprintf(out, "Published %d products to feed %s\n", run.RowCount, run.Identity.ID)
			fmt.Fprintf(out, "  Artifact: %s\n", run.ArtifactPath)
			if run.Upload != nil {
				fmt.Fprintf(out, "  Upload:   %s\n", run.Upload.ID)
			}
			if run.Identity.Created && !run.Identity.Ready {
				fmt.Fprintf(out, "  Warning:  feed was not readable after %d polls\n", run.Identity.PollAttempts)
			}
			return nil
		},
	}

	cmd.Flags().StringP("store", "s", "", "Store id (default store when empty)")
	cmd.Flags().Bool("all", false, "Publish every store")
	cmd.MarkFlagsMutuallyExclusive("store", "all")

	return cmd
}

func feedIDCmd(current func() *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed-id",
		Short: "Print the store's feed id, adopting or creating the feed when none is saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			ctx := cmd.Context()
			store, _ := cmd.Flags().GetString("store")
			resolved, err := a.Registry.Resolve(stores.Scope(store))
			if err != nil {
				return err
			}
			cfg, err := a.Settings.Resolve(ctx, stores.Scope(resolved.ID))
			if err != nil {
				return err
			}
			ident, err := a.Resolver.Resolve(ctx, a.Session(cfg.AccessToken, cfg.Debug), cfg)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ident.ID)
			if ident.Created && !ident.Ready {
				fmt.Fprintf(cmd.ErrOrStderr(), "feed %s was created but was not readable after %d polls\n", ident.ID, ident.PollAttempts)
			}
			return nil
		},
	}

	cmd.Flags().StringP("store", "s", "", "Store id (default store when empty)")

	return cmd
}

func configCmd(current func() *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or write store-scoped settings",
	}
	cmd.PersistentFlags().StringP("store", "s", "", "Store id (default scope when empty)")

	cmd.AddCommand(&cobra.Command{
		Use:   "get PATH",
		Short: "Print a setting, falling back to the default scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			store, _ := cmd.Flags().GetString("store")

			value, ok, err := a.Settings.Get(cmd.Context(), args[0], configScope(a, args[0], store))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s is not set", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set PATH VALUE",
		Short: "Save a setting for the store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			store, _ := cmd.Flags().GetString("store")
			scope := configScope(a, args[0], store)

			if scope != stores.DefaultScope {
				if _, err := a.Registry.Resolve(scope); err != nil {
					return err
				}
			}
			if err := a.Settings.SaveConfig(cmd.Context(), args[0], args[1], scope); err != nil {
				return err
			}
			a.Settings.CleanCache()
			fmt.Fprintf(cmd.OutOrStdout(), "%s saved\n", args[0])
			return nil
		},
	})

	return cmd
}

// configScope maps an empty --store to the default scope, except for
// store-only paths which live under the default store's id.
func configScope(a *app.App, path, store string) stores.Scope {
	if store == "" && path == settings.PathFeedID {
		return stores.Scope(a.Registry.Default().ID)
	}
	return stores.Scope(store)
}

func storesCmd(current func() *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "stores",
		Short: "List configured stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			out := cmd.OutOrStdout()
			def := a.Registry.Default().ID

			for _, s := range a.Registry.All() {
				marker := " "
				if s.ID == def {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %-6s %-10s %-4s %s\n", marker, s.ID, s.Code, s.Currency, s.Name)
			}
			return nil
		},
	}
}
