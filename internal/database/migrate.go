package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
)

// Migrate applies every .surql file of fsys in lexical order. Files are
// written with IF NOT EXISTS so re-running is harmless. Returns the number
// of files applied.
func Migrate(ctx context.Context, db Database, fsys fs.FS) (int, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return 0, fmt.Errorf("reading migrations: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasSuffix(name, ".surql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	for i, name := range files {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return i, fmt.Errorf("reading %s: %w", name, err)
		}
		if err := db.Execute(ctx, string(content), nil); err != nil {
			return i, fmt.Errorf("applying %s: %w", name, err)
		}
		slog.Debug("migration applied", slog.String("file", name))
	}

	return len(files), nil
}
