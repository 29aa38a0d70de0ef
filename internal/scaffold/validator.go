package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/lore/internal/config"
)

// CheckExisting checks if dir already holds a lore.yml.
// Returns an error if it does, nil otherwise.
func CheckExisting(dir string) error {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return fmt.Errorf(`repository already initialized

Found existing: %s

Use 'lore init --force' to rewrite the configuration (lessons are left untouched)`, config.FileName)
	}
	return nil
}
