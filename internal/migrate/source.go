package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Load reads the migration units directly under root in fsys, ordered for
// application. A missing directory is a legitimate empty set, not an error.
// Only *.sql files are considered; subdirectories are ignored.
func Load(fsys fs.FS, root string) ([]Unit, error) {
	if fsys == nil {
		return nil, fmt.Errorf("migration filesystem is required")
	}
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}

	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool { return unitLess(names[i], names[j]) })

	units := make([]Unit, 0, len(names))
	for _, name := range names {
		content, err := fs.ReadFile(fsys, path.Join(root, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		units = append(units, Unit{Version: name, SQL: ExtractUpSQL(string(content))})
	}
	return units, nil
}

// unitLess orders unit names by numeric prefix when both carry one, so that
// 2_x.sql applies before 10_y.sql. Everything else falls back to plain
// lexicographic order.
func unitLess(a, b string) bool {
	aNum, aOK := numericPrefix(a)
	bNum, bOK := numericPrefix(b)
	if aOK && bOK && aNum != bNum {
		return aNum < bNum
	}
	return a < b
}

func numericPrefix(name string) (int64, bool) {
	end := 0
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	value, err := strconv.ParseInt(name[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
