package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveBatchesToFile записывает все батчи хранилища в filePath в формате JSON.
//
// Файл перезаписывается целиком через временный файл и rename.
func SaveBatchesToFile(storage Storage, filePath string) error {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create dump directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), ".dump-*.json")
	if err != nil {
		return fmt.Errorf("failed to create dump file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	batches := storage.All()
	if batches == nil {
		batches = []ReceivedBatch{}
	}
	if err := enc.Encode(batches); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode dump: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filePath)
}

// LoadBatchesFromFile читает дамп из filePath и сохраняет батчи в storage.
func LoadBatchesFromFile(ctx context.Context, storage Storage, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	var batches []ReceivedBatch
	if err := json.Unmarshal(data, &batches); err != nil {
		return fmt.Errorf("failed to decode dump %s: %w", filePath, err)
	}
	for _, b := range batches {
		if err := storage.Store(ctx, b); err != nil {
			return err
		}
	}
	return nil
}
