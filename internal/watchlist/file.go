package watchlist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadFile reads the watch-list JSON array. A missing file yields an empty
// list and no error.
func LoadFile(filePath string) ([]string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	var symbols []string
	if err := json.Unmarshal(data, &symbols); err != nil {
		return nil, fmt.Errorf("parse watchlist %s: %w", filePath, err)
	}
	if symbols == nil {
		symbols = []string{}
	}
	return symbols, nil
}

// SaveFile rewrites the whole watch-list file.
func SaveFile(filePath string, symbols []string) error {
	if symbols == nil {
		symbols = []string{}
	}
	data, err := json.MarshalIndent(symbols, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0o644)
}
