package render

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"mailbuilder/common"
	"mailbuilder/config"
	"mailbuilder/state"
)

// buildOutputPath returns output file path for rendered source. Default name
// is source base name, user-defined template may produce different name and
// subdirectories. Unless NoDirs is requested source directory structure is
// preserved under dst. Every segment is cleaned and, if requested,
// transliterated.
func buildOutputPath(res *Result, dst string, format common.OutputFmt, env *state.LocalEnv) string {
	outDir := determineOutputDir(res.Source, dst, env)
	defaultFile := buildDefaultFileName(res.Source, format, env)

	if env.Cfg.Document.OutputNameTemplate == "" {
		return filepath.Join(outDir, defaultFile)
	}

	expandedName := expandOutputNameTemplate(res, format, env)
	if expandedName == "" {
		// fallback to default name if template expansion failed
		return filepath.Join(outDir, defaultFile)
	}

	return assemblePathWithSubdirs(outDir, expandedName, format, env)
}

func determineOutputDir(src, dst string, env *state.LocalEnv) string {
	if env.NoDirs {
		return dst
	}
	return filepath.Join(dst, filepath.Dir(src))
}

func buildDefaultFileName(src string, format common.OutputFmt, env *state.LocalEnv) string {
	baseName := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return cleanPathSegment(baseName, env) + format.Ext()
}

func expandOutputNameTemplate(res *Result, format common.OutputFmt, env *state.LocalEnv) string {
	expandedName, err := expandTemplate(res, config.OutputNameTemplateFieldName, env.Cfg.Document.OutputNameTemplate, format)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return filepath.FromSlash(expandedName)
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output path,
// cleaning and transliterating segments as needed
func assemblePathWithSubdirs(outDir, expandedName string, format common.OutputFmt, env *state.LocalEnv) string {
	pathSegments := splitAndCleanPath(expandedName)
	if len(pathSegments) == 0 {
		return outDir
	}

	fileName := cleanPathSegment(pathSegments[len(pathSegments)-1], env) + format.Ext()
	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)

	for _, segment := range pathSegments[:len(pathSegments)-1] {
		if segment == "." || segment == ".." {
			continue
		}
		dirParts = append(dirParts, cleanPathSegment(segment, env))
	}

	dirParts = append(dirParts, fileName)
	return filepath.Join(dirParts...)
}

func splitAndCleanPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); tail != ""; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Document.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
