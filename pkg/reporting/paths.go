package reporting

import (
	"os"
	"path/filepath"
)

// EnsureDir creates the parent directory of path if it does not exist.
func EnsureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}

// ReportPath joins the report directory and file name.
func ReportPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
