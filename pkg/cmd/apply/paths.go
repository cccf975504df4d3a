package apply

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Paintersrp/retag/internal/pathutil"
)

// vaultRelative maps a command line path onto the vault's slash form.
// Absolute paths must point inside vaultDir; the vault itself is "".
func vaultRelative(vaultDir, arg string) (string, error) {
	if strings.TrimSpace(arg) == "" {
		return "", fmt.Errorf("a path argument is required")
	}

	if filepath.IsAbs(arg) {
		rel, err := pathutil.VaultRelative(vaultDir, arg)
		if err != nil {
			return "", fmt.Errorf("failed to resolve path %q relative to vault %q: %w", arg, vaultDir, err)
		}
		arg = rel
	}

	rel := pathutil.CleanRelative(arg)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path %q is outside the vault %q", arg, vaultDir)
	}
	return rel, nil
}
