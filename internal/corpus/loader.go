// Package corpus loads the on-disk case collection: a cases.json metadata
// array plus one plain-text file per case under texts/.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/brucruz/legal-case-rag/internal/models"
)

const (
	metadataFile = "cases.json"
	textsDir     = "texts"
)

type caseRecord struct {
	models.CaseInput
	FullTextFile string `json:"fullTextFile"`
}

// Load reads dir/cases.json and inflates each record with the body of its
// full-text file resolved against dir/texts.
func Load(dir string) ([]models.CaseInput, error) {
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, fmt.Errorf("read case metadata: %w", err)
	}

	var records []caseRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse case metadata: %w", err)
	}

	inputs := make([]models.CaseInput, 0, len(records))
	for _, record := range records {
		input := record.CaseInput
		if record.FullTextFile != "" {
			body, err := os.ReadFile(filepath.Join(dir, textsDir, record.FullTextFile))
			if err != nil {
				return nil, fmt.Errorf("read full text for case %s: %w", record.CaseNumber, err)
			}
			input.FullText = string(body)
		}
		inputs = append(inputs, input)
	}

	log.Debug().Int("cases", len(inputs)).Str("dir", dir).Msg("loaded corpus")
	return inputs, nil
}
