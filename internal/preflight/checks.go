package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
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

// CheckSameFilesystem reports whether target shares a filesystem with source.
// A different filesystem still passes: moves fall back to copy and delete,
// which is slower and not atomic.
func CheckSameFilesystem(name, source, target string) Result {
	var src, dst unix.Stat_t
	if err := unix.Stat(source, &src); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("stat %s: %v", source, err)}
	}
	if err := unix.Stat(target, &dst); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("stat %s: %v", target, err)}
	}
	if src.Dev != dst.Dev {
		return Result{Name: name, Passed: true, Detail: "different filesystem (moves copy then delete)"}
	}
	return Result{Name: name, Passed: true, Detail: "same filesystem (atomic rename)"}
}
