package export

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
)

func fingerprint(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// writeIfChanged leaves a file alone when its content hash already matches.
// It reports whether it wrote.
func writeIfChanged(root, rel string, data []byte) (bool, error) {
	full := filepath.Join(root, rel)
	if old, err := os.ReadFile(full); err == nil && fingerprint(old) == fingerprint(data) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return false, err
	}
	return true, os.WriteFile(full, data, 0o644)
}
