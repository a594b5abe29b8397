package render

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"mailbuilder/state"
)

// debounce is the quiet period after the last file system event before
// changed sources are rendered again. Editors tend to produce bursts of
// events for a single save.
var debounce = 300 * time.Millisecond

// Watch is the action of watch command: source is rendered once and then
// again every time it (or anything under it) changes until interrupted.
func Watch(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("watch")

	src, dst, err := sourceAndDestination(cmd, log)
	if err != nil {
		return err
	}
	if err := setupEnv(cmd, env, log); err != nil {
		return err
	}
	// results are expected to be replaced on every change
	env.Overwrite = true

	return watch(ctx, src, dst, nil, log)
}

// watch renders src into dst and keeps doing it on changes. When ready is
// not nil it is closed once watcher is set up.
func watch(ctx context.Context, src, dst string, ready chan<- struct{}, log *zap.Logger) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("unable to watch source: %w", err)
	}
	root, single := src, ""
	if !fi.IsDir() {
		root, single = filepath.Dir(src), src
	} else if dst == root {
		return fmt.Errorf("destination must differ from watched directory (%s)", root)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create watcher: %w", err)
	}
	defer w.Close()

	if single != "" {
		err = w.Add(root)
	} else {
		err = addTree(w, root, dst)
	}
	if err != nil {
		return fmt.Errorf("unable to watch source: %w", err)
	}

	if err := process(ctx, src, dst, renderTo(dst, log), log); err != nil {
		log.Error("Initial rendering failed", zap.Error(err))
	}
	log.Info("Watching for changes", zap.String("source", src), zap.String("destination", dst))
	if ready != nil {
		close(ready)
	}

	var (
		pending = make(map[string]struct{})
		timer   = time.NewTimer(debounce)
	)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Watching stopped")
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error", zap.Error(err))
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, single, dst) {
				continue
			}
			if ev.Has(fsnotify.Create) && single == "" {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := addTree(w, ev.Name, dst); err != nil {
						log.Warn("Unable to watch directory", zap.String("dir", ev.Name), zap.Error(err))
					}
				}
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(debounce)
		case <-timer.C:
			rerender(ctx, src, root, dst, pending, log)
			clear(pending)
		}
	}
}

// relevant filters out events which cannot change output.
func relevant(ev fsnotify.Event, single, dst string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if single != "" {
		// images referenced by the source live next to it
		return ev.Name == single || isImageName(ev.Name)
	}
	return !within(ev.Name, dst)
}

func isImageName(name string) bool {
	return strings.HasPrefix(mime.TypeByExtension(filepath.Ext(name)), "image/")
}

func within(name, dir string) bool {
	rel, err := filepath.Rel(dir, name)
	return err == nil && filepath.IsLocal(rel)
}

// rerender processes changed sources. Change of anything else (images,
// archives) may affect any source so everything is rendered again.
func rerender(ctx context.Context, src, root, dst string, changed map[string]struct{}, log *zap.Logger) {
	names := make([]string, 0, len(changed))
	for name := range changed {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))

	fn := renderTo(dst, log)
	for _, name := range names {
		if kindOf(name) == kindNone {
			log.Debug("Dependency changed, rendering everything", zap.String("file", name))
			if err := process(ctx, src, dst, fn, log); err != nil {
				log.Error("Rendering failed", zap.Error(err))
			}
			return
		}
	}
	for _, name := range names {
		if _, err := os.Stat(name); err != nil {
			// removed or renamed away
			continue
		}
		rel := filepath.Base(name)
		if src == root {
			rel = strings.TrimPrefix(strings.TrimPrefix(name, root), string(filepath.Separator))
		}
		if err := processFile(ctx, name, rel, fn); err != nil {
			log.Error("Unable to process file", zap.String("file", name), zap.Error(err))
		}
	}
}

// addTree watches dir and all its subdirectories except skip.
func addTree(w *fsnotify.Watcher, dir, skip string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path == skip && path != dir {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
