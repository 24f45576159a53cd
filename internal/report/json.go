package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/p2gx/boqa-eval/internal/metrics"
	"github.com/p2gx/boqa-eval/internal/store"
)

func WriteJSON(path string, s metrics.Summary) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return store.WriteFile(path, append(raw, '\n'))
}

// ReadJSON loads a summary previously written by WriteJSON.
func ReadJSON(path string) (metrics.Summary, error) {
	var s metrics.Summary
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read summary %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("parse summary %s: %w", path, err)
	}
	return s, nil
}
