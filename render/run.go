// Package render turns templates and HTML fragments into email ready output:
// bare fragments, complete documents or bundles with prepared images.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	zip "github.com/hidez8891/zip"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"mailbuilder/archive"
	"mailbuilder/assets"
	"mailbuilder/common"
	"mailbuilder/state"
)

// Run is the action of render command.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	src, dst, err := sourceAndDestination(cmd, log)
	if err != nil {
		return err
	}
	if err := setupEnv(cmd, env, log); err != nil {
		return err
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", env.Format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, renderTo(dst, log), log)
}

// sourceFunc is called for every source found by process.
type sourceFunc func(ctx context.Context, src *Source) error

func renderTo(dst string, log *zap.Logger) sourceFunc {
	return func(ctx context.Context, src *Source) error {
		return processSource(ctx, src, dst, log)
	}
}

// sourceAndDestination reads positional arguments shared by render and watch.
func sourceAndDestination(cmd *cli.Command, log *zap.Logger) (src, dst string, err error) {
	src = cmd.Args().Get(0)
	if len(src) == 0 {
		return "", "", errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return "", "", err
	}

	dst = cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return "", "", fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return "", "", err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	return src, dst, nil
}

// setupEnv transfers command flags to the program state.
func setupEnv(cmd *cli.Command, env *state.LocalEnv, log *zap.Logger) error {
	format, err := common.ParseOutputFmt(cmd.String("to"))
	if err != nil {
		log.Warn("Unknown output format requested, switching to document", zap.Error(err))
		format = common.OutputFmtDocument
	}
	env.Format = format
	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	if err := env.SetCharset(cmd.String("charset")); err != nil {
		log.Warn("Unknown character set specification. Ignoring...", zap.Error(err))
	}
	if data := cmd.String("data"); data != "" {
		if err := env.LoadData(data); err != nil {
			return err
		}
		if env.Rpt != nil {
			env.Rpt.Store("data"+filepath.Ext(data), data)
		}
		log.Debug("Merge data loaded", zap.String("file", data), zap.Int("keys", len(env.Data)))
	}
	return nil
}

// process determines the input type (glob, directory, archive with optional
// path inside, or single file) and calls fn for every source found. Directory
// "skip" is not entered, so output is not picked up as input.
func process(ctx context.Context, src, skip string, fn sourceFunc, log *zap.Logger) error {
	if hasMeta(src) {
		if _, err := os.Stat(src); err != nil {
			return processGlob(ctx, src, fn, log)
		}
	}

	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, skip, fn, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// remaining part is a path (or pattern) inside archive
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, filepath.ToSlash(tail), "", fn, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		if kindOf(head) != kindNone && len(tail) == 0 {
			return processFile(ctx, head, filepath.Base(head), fn)
		}
		return fmt.Errorf("input was not recognized as template or html source (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

func hasMeta(p string) bool {
	return strings.ContainsAny(filepath.ToSlash(p), "*?[{")
}

// processGlob renders every file matching doublestar pattern. Matched
// archives are processed as a whole.
func processGlob(ctx context.Context, pattern string, fn sourceFunc, log *zap.Logger) error {
	base, rel := doublestar.SplitPattern(filepath.ToSlash(pattern))
	matches, err := doublestar.Glob(os.DirFS(filepath.FromSlash(base)), rel, doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("bad source pattern (%s): %w", pattern, err)
	}
	sort.Sort(natural.StringSlice(matches))
	if len(matches) == 0 {
		log.Debug("Nothing to process", zap.String("pattern", pattern))
		return nil
	}

	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := filepath.Join(filepath.FromSlash(base), filepath.FromSlash(m))
		if kindOf(p) != kindNone {
			if err := processFile(ctx, p, filepath.FromSlash(m), fn); err != nil {
				log.Error("Unable to process file", zap.String("file", p), zap.Error(err))
			}
			continue
		}
		if ok, err := isArchiveFile(p); err == nil && ok {
			if err := processArchive(ctx, p, "", filepath.Dir(filepath.FromSlash(m)), fn, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", p), zap.Error(err))
			}
			continue
		}
		log.Debug("Skipping file, not recognized as template, html source or archive", zap.String("file", p))
	}
	return nil
}

// processDir walks directory tree finding sources and archives and processes
// them.
func processDir(ctx context.Context, dir, skip string, fn sourceFunc, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() && path == skip && path != dir {
			// do not pick up our own output
			return filepath.SkipDir
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if kindOf(path) != kindNone {
			count++
			if err := processFile(ctx, path, rel, fn); err != nil {
				log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			}
			return nil
		}

		isArchive, err := isArchiveFile(path)
		if err != nil {
			// checking format - but cannot open target file
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !isArchive {
			log.Debug("Skipping file, not recognized as template, html source or archive", zap.String("file", path))
			return nil
		}
		count++
		if err := processArchive(ctx, path, "", filepath.Dir(rel), fn, log); err != nil {
			log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
	return err
}

// processArchive renders sources inside archive matching "pattern". Images
// are resolved against the archive content relative to the source.
func processArchive(ctx context.Context, arc, pattern, pathOut string, fn sourceFunc, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", arc))
		}
	}()

	files, err := archive.ReadAll(arc)
	if err != nil {
		return err
	}

	return archive.Walk(arc, pattern, func(name string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if kindOf(f.FileHeader.Name) == kindNone {
			log.Debug("Skipping file, not recognized as source", zap.String("archive", name), zap.String("file", f.FileHeader.Name))
			return nil
		}
		count++

		inner := f.FileHeader.Name
		src := &Source{
			Name: filepath.Join(pathOut, filepath.FromSlash(inner)),
			Data: files[path.Clean(inner)],
			Load: archiveLoader(files, path.Dir(inner)),
		}
		if err := fn(ctx, src); err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", name), zap.String("file", inner), zap.Error(err))
		}
		return nil
	})
}

// archiveLoader resolves image sources relative to dir inside archive.
func archiveLoader(files map[string][]byte, dir string) assets.Loader {
	load := assets.MapLoader(files)
	return func(name string) ([]byte, error) {
		return load(path.Join(dir, name))
	}
}

// processFile reads single source file, "rel" is its path relative to the
// processed root.
func processFile(ctx context.Context, file, rel string, fn sourceFunc) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	return fn(ctx, &Source{
		Name: rel,
		Path: file,
		Data: data,
		Load: assets.DirLoader(filepath.Dir(file)),
	})
}

// processSource renders single source and writes the result under dst.
func processSource(ctx context.Context, src *Source, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Rendering starting", zap.String("from", src.Name))
	defer func(start time.Time) {
		// NOTE: image processing libraries may panic on malformed input, when
		// multiple sources are being processed we do not want to stop.
		if r := recover(); r != nil {
			log.Error("Rendering ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("rendering panic: %v", r)
		} else if rerr == nil {
			log.Info("Rendering completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	res, err := Build(src, env, log)
	if err != nil {
		return err
	}

	outputName = buildOutputPath(res, dst, env.Format, env)
	if src.Path != "" && sameFile(src.Path, outputName) {
		return fmt.Errorf("output would overwrite source: %s", outputName)
	}
	if err := prepareOutput(outputName, env.Overwrite, log); err != nil {
		return err
	}
	if err := writeResult(res, outputName, env.Format, env.Overwrite); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	// Store rendering result for debugging
	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result/%s%s", filepath.ToSlash(src.Name), env.Format.Ext()), outputName)
		storeTree(env, src, res.Tree)
	}
	return nil
}

func sameFile(a, b string) bool {
	fa, err := os.Stat(a)
	if err != nil {
		return false
	}
	fb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(fa, fb)
}

// prepareOutput checks output file and creates its directory.
func prepareOutput(outputName string, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(outputName); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		return os.Remove(outputName)
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

func writeResult(res *Result, outputName string, format common.OutputFmt, overwrite bool) error {
	if format == common.OutputFmtBundle {
		files := make([]archive.File, 0, len(res.Images)+1)
		files = append(files, archive.File{Name: "index.html", Data: res.Output(format)})
		for _, img := range res.Images {
			files = append(files, archive.File{Name: img.Name, Data: img.Data})
		}
		return archive.Pack(outputName, files)
	}

	if err := os.WriteFile(outputName, res.Output(format), 0644); err != nil {
		return err
	}
	dir := filepath.Dir(outputName)
	for _, img := range res.Images {
		if err := writeImage(filepath.Join(dir, filepath.FromSlash(img.Name)), img.Data, overwrite); err != nil {
			return err
		}
	}
	return nil
}

// writeImage stores image next to the output. Images directory is shared by
// outputs in the same directory, identical files are left alone.
func writeImage(name string, data []byte, overwrite bool) error {
	if old, err := os.ReadFile(name); err == nil {
		if bytes.Equal(old, data) {
			return nil
		}
		if !overwrite {
			return fmt.Errorf("image file already exists: %s", name)
		}
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return err
	}
	return os.WriteFile(name, data, 0644)
}
