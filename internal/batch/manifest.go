package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one frame in the output manifest.
type ManifestEntry struct {
	Index     int          `json:"index"`
	Time      float64      `json:"time"`
	Held      string       `json:"held"`
	Image     string       `json:"image,omitempty"`
	PropModel *[16]float64 `json:"prop_model,omitempty"` // column-major
	Error     string       `json:"error,omitempty"`
}

// WriteManifest writes the per-frame manifest as indented JSON.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Index: r.Index,
			Time:  r.Time,
			Held:  r.Held.String(),
			Error: r.Error,
		}
		if r.Success {
			m := [16]float64(r.Model)
			entries[i].Image = r.Image
			entries[i].PropModel = &m
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
