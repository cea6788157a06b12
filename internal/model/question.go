package model

import (
	"encoding/json"
	"strings"
	"time"
)

// QuestionType defines the kind of practice question
type QuestionType string

const (
	QuestionTypeNumeric    QuestionType = "numeric"
	QuestionTypeCiphertext QuestionType = "ciphertext"
	QuestionTypeCode       QuestionType = "code"
	QuestionTypeFormula    QuestionType = "formula"
	QuestionTypeSubjective QuestionType = "subjective"
)

// Valid reports whether the type is one of the known question types
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeNumeric, QuestionTypeCiphertext, QuestionTypeCode, QuestionTypeFormula, QuestionTypeSubjective:
		return true
	}
	return false
}

// Difficulty is the question difficulty rating
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether the difficulty is one of the known levels
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// TestCase pairs an input with its expected output for code questions
type TestCase struct {
	Input  string `json:"input" bson:"input"`
	Output string `json:"output" bson:"output"`
}

// Question is a practice question in the catalog
type Question struct {
	ID             string       `json:"id" bson:"_id,omitempty"`
	QuestionText   string       `json:"questionText" bson:"questionText"`
	Type           QuestionType `json:"type" bson:"type"`
	CipherType     string       `json:"cipherType" bson:"cipherType"`
	Difficulty     Difficulty   `json:"difficulty" bson:"difficulty"`
	Tags           []string     `json:"tags" bson:"tags"`
	ExpectedAnswer string       `json:"expectedAnswer" bson:"expectedAnswer"`
	TestCases      []TestCase   `json:"testCases" bson:"testCases"`
	Source         string       `json:"source" bson:"source"`
	Images         []string     `json:"images" bson:"images"`
	CreatedAt      time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// TagList accepts either a JSON array of strings or a single comma-separated
// string and normalizes both to a list of trimmed, non-empty tags.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*t = normalizeTags(arr)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = normalizeTags(strings.Split(s, ","))
	return nil
}

func normalizeTags(raw []string) []string {
	tags := make([]string, 0, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// NormalizeTags trims and drops empty entries; a nil input yields an empty,
// never nil, slice.
func NormalizeTags(raw []string) []string {
	return normalizeTags(raw)
}

// QuestionFilter narrows a catalog listing. IncludeIDs/ExcludeIDs carry the
// solved/unsolved partition computed from the answer ledger.
type QuestionFilter struct {
	Type       string
	Difficulty string
	Tags       []string
	IncludeIDs []string
	ExcludeIDs []string
}

// QuestionUpdate enumerates the mutable fields of a question. Updates apply
// exactly these fields, never an arbitrary request-body patch.
type QuestionUpdate struct {
	QuestionText   string
	Type           QuestionType
	CipherType     string
	Difficulty     Difficulty
	Tags           []string
	ExpectedAnswer string
	TestCases      []TestCase
	Source         string
	Images         []string
}

// QuestionPage is one page of a catalog listing
type QuestionPage struct {
	Questions  []*Question `json:"questions"`
	TotalPages int64       `json:"totalPages"`
}
