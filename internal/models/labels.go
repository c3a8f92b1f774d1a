package models

type Sentiment struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type ContentType struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

type Intent struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

type Urgency struct {
	Level      string  `json:"level"`
	Confidence float64 `json:"confidence"`
}

type FileCategory struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Entities holds regex matches keyed by kind. Kinds with no match are absent.
type Entities map[string][]string

type Labels struct {
	Sentiment    Sentiment     `json:"sentiment"`
	Type         ContentType   `json:"type"`
	Intent       Intent        `json:"intent"`
	Urgency      Urgency       `json:"urgency"`
	Entities     Entities      `json:"entities"`
	FileCategory *FileCategory `json:"file_category"`
}
