package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/vinline/internal/cli/output"
	"github.com/leapstack-labs/vinline/internal/inliner"
	"github.com/spf13/cobra"
)

// InlineOptions holds options for the inline command.
type InlineOptions struct {
	// Stdout writes the inlined source to standard output instead of a file
	Stdout bool
	// Watch re-runs the inliner whenever the source file changes
	Watch bool
}

// NewInlineCommand creates the inline command.
func NewInlineCommand() *cobra.Command {
	opts := &InlineOptions{}

	cmd := &cobra.Command{
		Use:   "inline <file>",
		Short: "Flatten module instantiations into their callers",
		Long: `Inline every module instantiation of a structural Verilog file.

Each instantiation is replaced by a copy of the instantiated module's body,
with its local names prefixed by the instance name and its ports bound
through assign statements. Modules are processed leaves first, so the
result contains no instantiations of modules defined in the file.

With --top only the named modules, and the modules they instantiate, are
inlined and written.

Output format:
  The summary follows --output; the Verilog itself is always plain text.`,
		Example: `  # Inline everything into out.v
  vinline inline design.v

  # Inline one top module to a chosen file
  vinline inline design.v --top TOP -o flat.v

  # Print the result
  vinline inline design.v --top TOP --stdout

  # Rebuild whenever design.v changes
  vinline inline design.v --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			if opts.Watch {
				return watchInline(cmd.Context(), cc, args[0], opts)
			}
			return runInline(cmd.Context(), cc, args[0], opts)
		},
	}

	cmd.Flags().StringSliceP("top", "t", nil, "Top modules to inline (default: all)")
	cmd.Flags().StringP("out", "o", "", "Output file (default: out.v)")
	cmd.Flags().BoolVar(&opts.Stdout, "stdout", false, "Write the inlined source to stdout")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run when the source file changes")
	cmd.Flags().Duration("watch-debounce", 0, "Quiet period before a watched rebuild (default: 200ms)")

	return cmd
}

// runInline inlines file once and writes the result.
func runInline(ctx context.Context, cc *CommandContext, file string, opts *InlineOptions) error {
	text, modules, err := inlineFile(ctx, cc.Inliner, file, cc.Cfg.Top)
	if err != nil {
		return err
	}

	r := cc.Renderer
	if opts.Stdout {
		r.Printf("%s", text)
		return nil
	}

	if dir := filepath.Dir(cc.Cfg.Out); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(cc.Cfg.Out, []byte(text), 0o644); err != nil { //nolint:gosec // generated source is world readable
		return fmt.Errorf("failed to write output: %w", err)
	}
	cc.Logger.Info("output written", "file", cc.Cfg.Out, "bytes", len(text))

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(output.InlineOutput{File: file, Output: cc.Cfg.Out, Modules: modules})
	}
	r.Success(fmt.Sprintf("Inlined %d modules from %s into %s", len(modules), file, cc.Cfg.Out))
	return nil
}

// inlineFile runs the pipeline over file and renders the result. It
// returns the rendered source and the names of the rendered modules.
func inlineFile(ctx context.Context, in *inliner.Inliner, file string, top []string) (string, []string, error) {
	d, err := in.Load(file)
	if err != nil {
		return "", nil, err
	}

	if len(top) > 0 {
		err = in.InlineFor(ctx, d, top...)
	} else {
		err = in.InlineAll(ctx, d)
	}
	if err != nil {
		return "", nil, err
	}

	text, err := inliner.Render(d.Inlined, top...)
	if err != nil {
		return "", nil, err
	}

	modules := top
	if len(modules) == 0 {
		modules = d.Inlined.Names()
	}
	return text, modules, nil
}

// watchInline runs the inliner once, then again after every change to file
// until ctx is cancelled. Failed runs are reported and the watch goes on.
func watchInline(ctx context.Context, cc *CommandContext, file string, opts *InlineOptions) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", file, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace files on save, so watch the directory.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	rebuild := func() {
		if err := runInline(ctx, cc, file, opts); err != nil {
			cc.Renderer.Error(err.Error())
		}
	}

	rebuild()
	cc.Logger.Info("watching for changes", "file", abs, "debounce", cc.Cfg.WatchDebounce)

	trigger := make(chan struct{}, 1)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != abs || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(cc.Cfg.WatchDebounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
		case <-trigger:
			cc.Logger.Debug("source changed", "file", abs)
			rebuild()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Warn("watcher error", "error", err)
		}
	}
}
