package model

import "strings"

type QuestionType string

const (
	QuestionSubjective     QuestionType = "subjective"
	QuestionSingleChoice   QuestionType = "single_choice"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	// QuestionRating is only valid for feedback questions.
	QuestionRating QuestionType = "rating"
)

func (t QuestionType) IsChoice() bool {
	return t == QuestionSingleChoice || t == QuestionMultipleChoice
}

// OptionSeparator joins selected option ids in a submission row.
const OptionSeparator = ","

// JoinOptions serializes selected option ids.
func JoinOptions(ids []string) string {
	return strings.Join(ids, OptionSeparator)
}

// SplitOptions parses a stored SelectedOption column.
func SplitOptions(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, OptionSeparator)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
