// Package preflight verifies the host before the pipeline first writes:
// directory permissions for the log, spool, and state paths, and whether the
// OS journal can accept events.
package preflight

import (
	"fmt"
	"os"

	"github.com/coreos/go-systemd/v22/journal"
	"golang.org/x/sys/unix"

	"chronicle/internal/config"
)

// Result is the outcome of one check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckDirectoryAccess verifies that the directory exists and is readable
// and writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckJournal reports whether the OS journal socket accepts writes. An
// unavailable journal is not fatal; the event sink degrades softly.
func CheckJournal() Result {
	const name = "OS journal"
	if journal.Enabled() {
		return Result{Name: name, Passed: true, Detail: "journal socket reachable"}
	}
	return Result{Name: name, Detail: "journal socket unreachable; event sink will be skipped"}
}

// Run evaluates every host requirement for the given config.
func Run(cfg *config.Config) []Result {
	return []Result{
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Spool directory", cfg.Paths.SpoolDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckJournal(),
	}
}
