package visit

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"FieldCollect/internal/config"
)

// StorePhoto writes visit photo bytes under an allocation-scoped
// directory and returns the stored relative path. The random file name
// keeps concurrent visits to the same allocation from clobbering each
// other.
func StorePhoto(allocationID int64, data []byte) (string, error) {
	dir := filepath.Join(config.VisitPhotoDir, strconv.FormatInt(allocationID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ".jpg"
	full := filepath.Join(dir, name)
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return "/uploads/visit/" + strconv.FormatInt(allocationID, 10) + "/" + name, nil
}

// RemovePhoto deletes a stored photo given the path StorePhoto
// returned. Used to roll back when the visit row itself is rejected.
func RemovePhoto(storedPath string) {
	if storedPath == "" {
		return
	}
	rel := filepath.Join(config.VisitPhotoDir, filepath.Base(filepath.Dir(storedPath)), filepath.Base(storedPath))
	os.Remove(rel)
}
