package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultExtensions are the file suffixes linted when a directory is given.
var DefaultExtensions = []string{".js", ".mjs", ".cjs", ".jsx"}

// DefaultExclude are directory names skipped while walking.
var DefaultExclude = []string{"node_modules", ".git", "dist"}

// ListFiles раскрывает аргументы командной строки в отсортированный список файлов.
// Файлы, указанные явно, берутся всегда; директории обходятся рекурсивно,
// с фильтром по расширению и без исключённых директорий.
func ListFiles(paths, extensions, exclude []string) ([]string, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	excluded := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		excluded[name] = struct{}{}
	}

	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			files = append(files, filepath.Clean(root))
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if _, skip := excluded[d.Name()]; skip && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if hasExtension(path, extensions) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	// Сортируем для детерминированного порядка
	slices.Sort(files)
	return slices.Compact(files), nil
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
