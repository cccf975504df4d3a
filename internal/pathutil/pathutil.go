package pathutil

import (
	"path"
	"path/filepath"
	"strings"
)

// NormalizePath converts Windows-style separators to the current platform's separator
// and cleans the resulting path.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}

	// Replace Windows separators and collapse redundant separators/segments.
	replaced := strings.ReplaceAll(p, "\\", "/")
	return filepath.Clean(filepath.FromSlash(replaced))
}

// VaultRelative returns the path to target relative to the provided vault directory.
// The returned path always uses forward slashes to simplify downstream processing
// and ensure platform agnosticism.
func VaultRelative(vaultDir, target string) (string, error) {
	base := NormalizePath(vaultDir)
	cleanedTarget := NormalizePath(target)

	rel, err := filepath.Rel(base, cleanedTarget)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(rel), nil
}

// CleanRelative normalizes a user supplied vault-relative path into the
// slash form used by documents and folders. The vault root itself is "".
func CleanRelative(p string) string {
	replaced := strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	if replaced == "" {
		return ""
	}

	cleaned := strings.Trim(path.Clean(replaced), "/")
	if cleaned == "." {
		return ""
	}
	return cleaned
}

// ParentDir returns the containing folder of a slash path, or "" when the
// path sits at the vault root.
func ParentDir(rel string) string {
	dir := path.Dir(rel)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// Basename returns the final path element without its extension.
func Basename(rel string) string {
	base := path.Base(rel)
	return strings.TrimSuffix(base, path.Ext(base))
}
