package models

import (
	"encoding/json"
	"fmt"
)

// Prediction is one entry of a predictions file.
type Prediction struct {
	Filename string `json:"filename"`
	HTML     string `json:"html"`
}

// GroundTruth is one entry of a ground truth file.
type GroundTruth struct {
	Filename      string `json:"filename"`
	TextHTMLTable string `json:"text_html_table"`
}

// GroundTruthFile accepts both a bare array of entries and the
// {"image": [...]} wrapper some dataset exports use.
type GroundTruthFile struct {
	Entries []GroundTruth
}

func (f *GroundTruthFile) UnmarshalJSON(data []byte) error {
	var entries []GroundTruth
	if err := json.Unmarshal(data, &entries); err == nil {
		f.Entries = entries
		return nil
	}

	var wrapper struct {
		Image *[]GroundTruth `json:"image"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return fmt.Errorf("ground truth is neither an array nor an {\"image\": [...]} object: %w", err)
	}
	if wrapper.Image == nil {
		return fmt.Errorf("ground truth object has no \"image\" array")
	}
	f.Entries = *wrapper.Image
	return nil
}
