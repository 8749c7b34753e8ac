package preflight

import (
	"os"

	"intake/internal/config"
)

// DirInventory counts the files waiting in one intake directory.
type DirInventory struct {
	Role   string `json:"role"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	Files  int    `json:"files"`
}

// Inventory lists the three intake directories with their file counts.
// Subdirectories are not counted.
func Inventory(cfg *config.Config) []DirInventory {
	if cfg == nil {
		return nil
	}
	roles := []struct {
		role string
		path string
	}{
		{"unprocessed", cfg.Paths.UnprocessedDir},
		{"processed", cfg.Paths.ProcessedDir},
		{"error", cfg.Paths.ErrorDir},
	}
	out := make([]DirInventory, 0, len(roles))
	for _, r := range roles {
		inv := DirInventory{Role: r.role, Path: r.path}
		entries, err := os.ReadDir(r.path)
		if err == nil {
			inv.Exists = true
			for _, entry := range entries {
				if !entry.IsDir() {
					inv.Files++
				}
			}
		}
		out = append(out, inv)
	}
	return out
}
