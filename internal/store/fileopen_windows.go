//go:build windows

package store

import (
	"fmt"
	"os"

	"github.com/hpungsan/passgen/internal/errors"
)

// openImportFile opens path read-only. Windows has no O_NOFOLLOW, so a
// symlink is rejected with Lstat first.
func openImportFile(path string) (*os.File, error) {
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("import path must not be a symlink")
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	return f, nil
}
