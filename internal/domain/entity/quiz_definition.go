package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
)

// QuestionDefinition описывает вопрос в исходном определении викторины:
// [{"text": "...", "choices": ["..."], "correct": 1}]
type QuestionDefinition struct {
	Text    string   `json:"text" yaml:"text"`
	Choices []string `json:"choices" yaml:"choices"`
	Correct *int     `json:"correct" yaml:"correct"`
}

// ParseQuizDefinition разбирает JSON-массив вопросов и проверяет его
func ParseQuizDefinition(raw []byte) ([]QuestionDefinition, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, apperrors.NewFieldError("questions", "quiz definition is empty")
	}
	var defs []QuestionDefinition
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&defs); err != nil {
		return nil, apperrors.NewFieldError("questions", fmt.Sprintf("malformed quiz definition: %v", err))
	}
	if dec.More() {
		return nil, apperrors.NewFieldError("questions", "malformed quiz definition: trailing data")
	}
	if err := ValidateQuizDefinition(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// ValidateQuizDefinition проверяет, что определение можно превратить в граф вопросов
func ValidateQuizDefinition(defs []QuestionDefinition) error {
	if len(defs) == 0 {
		return apperrors.NewFieldError("questions", "quiz must contain at least one question")
	}
	for i, d := range defs {
		field := fmt.Sprintf("questions[%d]", i)
		if strings.TrimSpace(d.Text) == "" {
			return apperrors.NewFieldError(field+".text", "must not be empty")
		}
		if len(d.Choices) < 2 {
			return apperrors.NewFieldError(field+".choices", "at least two choices are required")
		}
		for j, c := range d.Choices {
			if strings.TrimSpace(c) == "" {
				return apperrors.NewFieldError(fmt.Sprintf("%s.choices[%d]", field, j), "must not be empty")
			}
		}
		if d.Correct == nil {
			return apperrors.NewFieldError(field+".correct", "must be set")
		}
		if *d.Correct < 0 || *d.Correct >= len(d.Choices) {
			return apperrors.NewFieldError(field+".correct",
				fmt.Sprintf("index %d is out of range for %d choices", *d.Correct, len(d.Choices)))
		}
	}
	return nil
}
