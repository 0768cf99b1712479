package dataset

import (
	"encoding/gob"
	"fmt"
	"os"
	"strings"
	"time"

	"olist-dashboard/internal/models"
)

const (
	cacheVersion = "v1"
	cacheDir     = ".cache"
)

type orderCache struct {
	Orders  []models.Order
	SavedAt time.Time
}

func cacheFilename(csvPath string) string {
	return fmt.Sprintf("%s/%s_%s.gob", cacheDir, strings.ReplaceAll(csvPath, "/", "_"), cacheVersion)
}

// SaveOrderCache writes parsed orders next to the source CSV so later starts
// skip the parse.
func SaveOrderCache(csvPath string, orders []models.Order) error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(cacheFilename(csvPath))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(orderCache{Orders: orders, SavedAt: time.Now()})
}

// LoadOrderCache returns cached orders when the cache is newer than the CSV.
func LoadOrderCache(csvPath string) ([]models.Order, error) {
	file, err := os.Open(cacheFilename(csvPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cached orderCache
	if err := gob.NewDecoder(file).Decode(&cached); err != nil {
		return nil, err
	}

	info, err := os.Stat(csvPath)
	if err != nil {
		return nil, err
	}
	if info.ModTime().After(cached.SavedAt) {
		return nil, fmt.Errorf("cache stale for %s", csvPath)
	}

	return cached.Orders, nil
}
