package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchLag drops repeat events for the same file, as editors often write a
// file several times on save.
const watchLag = 100 * time.Millisecond

// fileWatcher reports changes to a single file. It watches the parent
// directory so editors that save by renaming a temp file are seen too.
type fileWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	last    time.Time
}

func newFileWatcher(path string) (*fileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}
	return &fileWatcher{path: abs, watcher: w}, nil
}

// run calls onChange for every change of the file until ctx is done.
func (fw *fileWatcher) run(ctx context.Context, onChange func()) error {
	defer fw.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			now := time.Now()
			if now.Sub(fw.last) < watchLag {
				continue
			}
			fw.last = now
			onChange()
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", fw.path, err)
		}
	}
}

func generateWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <script>",
		Short: "re-evaluate a zone script whenever it changes",
		Long:  "evaluates a zone script, then again on every save, printing a zone summary or the errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fw, err := newFileWatcher(args[0])
			if err != nil {
				return err
			}
			report := func() {
				_, result, err := opts.evaluate(args[0], cmd.ErrOrStderr())
				if err != nil {
					if !errors.Is(err, errEval) {
						fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
					}
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d zone(s), %d warning(s)\n",
					args[0], len(result.Zones), len(result.Warnings))
			}
			report()
			return fw.run(cmd.Context(), report)
		},
	}
}
