package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	exeDirOnce sync.Once
	exeDir     string
)

// ExecutableDir returns the directory holding the running binary with
// symlinks resolved. It falls back to the working directory when the
// executable cannot be located.
func ExecutableDir() string {
	exeDirOnce.Do(func() {
		exe, err := os.Executable()
		if err == nil {
			exe, err = filepath.EvalSymlinks(exe)
		}
		if err != nil {
			slog.Default().Warn("Could not resolve executable directory, using working directory",
				slog.String("error", err.Error()))
			exeDir, _ = os.Getwd()
			return
		}
		exeDir = filepath.Dir(exe)
	})
	return exeDir
}

// ResolvePath anchors a relative path at the executable directory, so the
// binary behaves the same regardless of the working directory. Absolute and
// empty paths are returned unchanged.
func ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(ExecutableDir(), p)
}

// FileExists checks if a regular file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
