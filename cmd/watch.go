package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/conneroisu/combochart/internal/chartdef"
	"github.com/conneroisu/combochart/internal/errors"
	"github.com/conneroisu/combochart/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <definition...>",
	Short: "Re-render chart definitions when they change",
	Long: `Render the definitions once, then watch them and their data files and
render again after every change. Output goes where render would put it.

Examples:
  combochart watch chart.yaml
  combochart watch charts/*.yaml -o out`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

var (
	watchOutDir string
	watchAt     = frameAt{final: true}
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchOutDir, "output", "o", "", "Output directory (default: next to each definition)")
	watchCmd.Flags().Var(&watchAt, "at", "Frame to write: final or an offset such as 150ms")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &chartRenderer{
		fs:      afero.NewOsFs(),
		cfg:     cfg,
		log:     log,
		outDir:  watchOutDir,
		at:      watchAt,
		workers: len(args),
	}
	deps := dependents(r.fs, args)

	fw, err := watcher.NewFileWatcher(cfg.Watch.Debounce, log)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "WATCH", "failed to create file watcher")
	}
	defer fw.Stop()

	files := make([]string, 0, len(deps))
	for f := range deps {
		files = append(files, f)
	}
	if err := fw.WatchFiles(files...); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "WATCH", "failed to watch chart files")
	}
	fw.AddFilter(watcher.NoHiddenFilter)

	handler := errors.NewErrorHandler(log)
	fw.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		changed := affected(deps, events)
		if len(changed) == 0 {
			return nil
		}
		results, err := r.renderAll(ctx, changed)
		for _, res := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", res.Definition, res.Output)
		}
		handler.Handle(ctx, err)
		return nil
	})

	results, err := r.renderAll(ctx, args)
	for _, res := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", res.Definition, res.Output)
	}
	handler.Handle(ctx, err)

	if err := fw.Start(ctx); err != nil {
		return err
	}
	log.Info(ctx, "Watching for changes", "definitions", len(args), "files", len(files))
	<-ctx.Done()
	return nil
}

// dependents maps every watched file to the definitions that read it: a
// definition depends on itself and on its data file.
func dependents(fs afero.Fs, defs []string) map[string][]string {
	deps := make(map[string][]string)
	add := func(file, def string) {
		if abs, err := filepath.Abs(file); err == nil {
			file = abs
		}
		deps[file] = append(deps[file], def)
	}
	for _, def := range defs {
		add(def, def)
		d, err := chartdef.Load(fs, def)
		if err != nil || d.DataFile == "" {
			continue
		}
		data := d.DataFile
		if !filepath.IsAbs(data) {
			data = filepath.Join(filepath.Dir(def), data)
		}
		add(data, def)
	}
	return deps
}

// affected returns the definitions to render again for events, each once,
// in first-seen order.
func affected(deps map[string][]string, events []watcher.ChangeEvent) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range events {
		path := e.Path
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		for _, def := range deps[path] {
			if !seen[def] {
				seen[def] = true
				out = append(out, def)
			}
		}
	}
	return out
}
