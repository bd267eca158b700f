package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/circlepack/pkg/errors"
	"github.com/matzehuels/circlepack/pkg/solver"
)

func (c *CLI) backendsCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "backends",
		Short: "List solver backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return printBackendsJSON()
			}
			fmt.Fprintln(stdout, backendsTable())
			return c.checkEngine()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// checkEngine reports whether the configured engine can run at all.
func (c *CLI) checkEngine() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	avail, ok := c.newEngine(cfg).(interface{ Available() error })
	if !ok {
		return nil
	}
	if err := avail.Available(); err != nil {
		printWarning("%s", errors.UserMessage(err))
		return nil
	}
	printSuccess("ampl binary found")
	return nil
}

func backendsTable() string {
	rows := make([][]string, 0, len(solver.Backends))
	for _, b := range solver.Backends {
		name := string(b)
		if b == solver.DefaultBackend {
			name += " *"
		}
		rows = append(rows, []string{name, b.Regime().String(), b.Description()})
	}
	return newTable("Backend", "Regime", "Description").Rows(rows...).Render()
}

func printBackendsJSON() error {
	type entry struct {
		Name    string        `json:"name"`
		Regime  solver.Regime `json:"regime"`
		Options string        `json:"options"`
	}
	out := make([]entry, 0, len(solver.Backends))
	for _, b := range solver.Backends {
		out = append(out, entry{Name: string(b), Regime: b.Regime(), Options: b.OptionsName()})
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
