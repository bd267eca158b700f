package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/circlepack/pkg/errors"
	"github.com/matzehuels/circlepack/pkg/packing"
)

func (c *CLI) renderCommand() *cobra.Command {
	var (
		out   outputOpts
		runID string
	)
	cmd := &cobra.Command{
		Use:   "render [result.json]",
		Short: "Render a saved packing to SVG, PNG, PDF or DOT",
		Long: `Render draws a packing saved by 'solve --json' or 'solve -f json', or a run
from the history with --run. The packing is validated again before drawing.`,
		Example: `  circlepack render packing-n5.json -f svg,png
  circlepack render --run 1f0c... -o best.pdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				res packing.Result
				err error
			)
			switch {
			case runID != "" && len(args) > 0:
				return errors.New(errors.ErrCodeInvalidConfig, "give either a file or --run, not both")
			case runID != "":
				res, err = c.loadRun(ctx, runID)
			case len(args) == 1:
				res, err = loadResultFile(args[0])
				if out.output == "" {
					out.output = strings.TrimSuffix(args[0], filepath.Ext(args[0]))
				}
			default:
				return errors.New(errors.ErrCodeInvalidConfig, "nothing to render: give a result file or --run")
			}
			if err != nil {
				return err
			}
			return renderResult(ctx, res, &out)
		},
	}
	bindOutputFlags(cmd, &out)
	cmd.Flags().StringVar(&runID, "run", "", "render a run from the history")
	return cmd
}

func renderResult(ctx context.Context, res packing.Result, out *outputOpts) error {
	formats, err := out.formatsFor()
	if err != nil {
		return err
	}
	// A bare base path with one format still needs its extension.
	if len(formats) == 1 && out.output != "" && filepath.Ext(out.output) == "" {
		out.output += "." + formats[0].Ext()
	}
	paths, err := writeArtifacts(ctx, res, out)
	for _, p := range paths {
		printFile(p)
	}
	return err
}

// loadResultFile reads either a full run ({"packing": ...}) or a bare
// packing. Decoding a packing validates it.
func loadResultFile(path string) (packing.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return packing.Result{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	var run struct {
		Packing *packing.Result `json:"packing"`
	}
	if err := json.Unmarshal(data, &run); err != nil {
		return packing.Result{}, wrapDecode(path, err)
	}
	if run.Packing != nil {
		return *run.Packing, nil
	}
	var res packing.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return packing.Result{}, wrapDecode(path, err)
	}
	return res, nil
}

func wrapDecode(path string, err error) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
}

func (c *CLI) loadRun(ctx context.Context, id string) (packing.Result, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return packing.Result{}, err
	}
	st, err := c.newStore(ctx, cfg)
	if err != nil {
		return packing.Result{}, err
	}
	if st == nil {
		return packing.Result{}, errors.New(errors.ErrCodeNotFound, "run history is disabled")
	}
	defer st.Close(context.Background())

	rec, err := st.Get(ctx, id)
	if err != nil {
		return packing.Result{}, err
	}
	res, err := rec.Result()
	if err != nil {
		return packing.Result{}, fmt.Errorf("run %s: %w", id, err)
	}
	return res, nil
}
