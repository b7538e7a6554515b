package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chazu/zoner/pkg/app"
	"github.com/chazu/zoner/pkg/config"
	"github.com/chazu/zoner/pkg/store"
	"github.com/spf13/cobra"
)

// errEval reports that a script produced errors. They are printed already.
var errEval = errors.New("script has errors")

type options struct {
	configPath string
	center     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:          "zonectl",
		Short:        "zone script tools",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a TOML config file")
	rootCmd.AddCommand(
		generateEvalCmd(opts),
		generateExportCmd(opts),
		generateSaveCmd(opts),
		generateListCmd(opts),
		generateDeleteCmd(opts),
		generateWatchCmd(opts),
	)
	return rootCmd
}

func (o *options) load() (config.Config, error) {
	if o.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(o.configPath)
}

// evaluate runs the script at path and prints any errors and warnings to w.
func (o *options) evaluate(path string, w io.Writer) (*app.App, app.EvalResult, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, app.EvalResult{}, err
	}
	a, err := app.New(cfg)
	if err != nil {
		return nil, app.EvalResult{}, err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, app.EvalResult{}, err
	}
	result := a.Evaluate(string(source))
	for _, e := range result.Warnings {
		fmt.Fprintf(w, "warning: %s\n", describe(path, e))
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "error: %s\n", describe(path, e))
	}
	if len(result.Errors) > 0 {
		return a, result, errEval
	}
	return a, result, nil
}

func describe(path string, e app.EvalErrorData) string {
	switch {
	case e.ZoneID != "":
		return fmt.Sprintf("%s: zone %s: %s", path, e.ZoneID, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %s", path, e.Line, e.Col, e.Message)
	}
	return fmt.Sprintf("%s: %s", path, e.Message)
}

func (o *options) openStore(ctx context.Context) (*store.Store, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	path, err := cfg.StorePath()
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, path, cfg.NamedLogger("store"))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func generateEvalCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <script>",
		Short: "evaluate a zone script",
		Long:  "evaluates a zone script and prints the resulting zones and section centroids as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, result, err := opts.evaluate(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				Zones     any `json:"zones"`
				Centroids any `json:"centroids"`
			}{result.Zones, result.Centroids})
		},
	}
}

func generateExportCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <script> <out.stl> [zone-id...]",
		Short: "export zones as an STL solid",
		Long:  "evaluates a zone script and writes the union of the named zones, or of every zone, as ASCII STL",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, result, err := opts.evaluate(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ids := args[2:]
			if len(ids) == 0 {
				for _, z := range result.Zones {
					ids = append(ids, z.ID)
				}
			}
			if err := a.ExportSTL(args[1], opts.center, ids...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d zone(s) to %s\n", len(ids), args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.center, "center", false, "center the footprint on the origin and rest the floor on y=0")
	return cmd
}

func generateSaveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "save <script>",
		Short: "evaluate a zone script and store its zones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, result, err := opts.evaluate(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			s, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			a.AttachStore(s)
			defer a.Shutdown(cmd.Context())
			if err := a.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d zone(s)\n", len(result.Zones))
			return nil
		},
	}
}

func generateListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "print stored zones as JSON",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			docs, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), docs)
		},
	}
}

func generateDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <zone-id>",
		Short: "remove a stored zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Delete(cmd.Context(), args[0])
		},
	}
}
