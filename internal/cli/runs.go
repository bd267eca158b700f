package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/circlepack/pkg/errors"
	"github.com/matzehuels/circlepack/pkg/store"
)

func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse the run history",
	}
	cmd.AddCommand(c.runsListCommand())
	cmd.AddCommand(c.runsShowCommand())
	return cmd
}

func (c *CLI) runsListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				recs, err := st.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(recs) == 0 {
					printInfo("No runs yet")
					return nil
				}
				fmt.Fprintln(stdout, runsTable(recs))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", store.DefaultListLimit, "number of runs to show")
	return cmd
}

func (c *CLI) runsShowCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				rec, err := st.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(rec)
				}
				printRecord(rec)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// withStore opens the configured store for fn and closes it afterwards.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	st, err := c.newStore(ctx, cfg)
	if err != nil {
		return err
	}
	if st == nil {
		return errors.New(errors.ErrCodeNotFound, "run history is disabled (store kind %q)", cfg.Store.Kind)
	}
	defer st.Close(context.Background())
	return fn(st)
}

func runsTable(recs []store.Record) string {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		source := ""
		if r.CacheHit {
			source = "cached"
		}
		rows = append(rows, []string{
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprint(r.N),
			r.Backend,
			fmt.Sprintf("%.9g", r.Radius),
			source,
		})
	}
	return newTable("Run", "Created", "N", "Backend", "Radius", "").Rows(rows...).Render()
}

func printRecord(r store.Record) {
	printKeyValue("run", r.ID)
	printKeyValue("created", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	printKeyValue("domain", fmt.Sprintf("[%g, %g] × [%g, %g]", r.Domain.XMin, r.Domain.XMax, r.Domain.YMin, r.Domain.YMax))
	printKeyValue("circles", fmt.Sprint(r.N))
	printKeyValue("radius", fmt.Sprintf("%.12g", r.Radius))
	printKeyValue("density", fmt.Sprintf("%.4f", r.Density))
	printKeyValue("backend", fmt.Sprintf("%s (%s)", r.Backend, r.Regime))
	if r.Strategy != "" {
		printKeyValue("guess", fmt.Sprintf("%s, seed %d", r.Strategy, r.Seed))
	}
	if r.CacheHit {
		printDetail("answered from the result cache")
	}
}
