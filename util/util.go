package util

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mediasafe/media-scan-services/constants"
)

// StringListContains returns true if the list of strings contains item.
func StringListContains(list []string, item string) bool {
	if list != nil {
		for i := range list {
			if list[i] == item {
				return true
			}
		}
	}
	return false
}

// KeyExt returns the lowercase file extension of an object key,
// without the leading dot. Returns an empty string if the key has
// no extension.
func KeyExt(key string) string {
	ext := strings.ToLower(path.Ext(key))
	return strings.TrimPrefix(ext, ".")
}

// IsStagedKey returns true if key lives under the staging prefix,
// meaning the object is awaiting a joint scan decision.
func IsStagedKey(key string) bool {
	return strings.HasPrefix(key, constants.StagingPrefix)
}

// FinalKey strips the staging prefix from key, producing the public
// key the object gets when promoted. Keys without the prefix come
// back unchanged.
func FinalKey(key string) string {
	return strings.TrimPrefix(key, constants.StagingPrefix)
}

// QuarantineKey rewrites key under the quarantine prefix, preserving
// the final (post-strip) filename for traceability.
func QuarantineKey(key string) string {
	return constants.QuarantinePrefix + FinalKey(key)
}

// ExpandTilde expands the tilde in paths like ~/logs to the user's
// home directory.
func ExpandTilde(dirName string) (string, error) {
	if !strings.HasPrefix(dirName, "~") {
		return dirName, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("Cannot expand path %s: %v", dirName, err)
	}
	return filepath.Join(home, strings.TrimPrefix(dirName, "~")), nil
}
