package word

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Word is a vocabulary entry inside a folder.
type Word struct {
	ID            uuid.UUID `json:"id"`
	FolderID      uuid.UUID `json:"folder_id"`
	UserID        uuid.UUID `json:"user_id"`
	Text          string    `json:"text"`
	Definition    string    `json:"definition"`
	Examples      []string  `json:"examples"`
	ImageURLs     []string  `json:"image_urls"`
	PartOfSpeech  *string   `json:"part_of_speech"`
	Pronunciation *string   `json:"pronunciation"`
	Notes         *string   `json:"notes"`
	ImageKey      *string   `json:"image_key,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateInput is the body of a word creation request.
type CreateInput struct {
	Text          string   `json:"text"`
	Definition    string   `json:"definition"`
	Examples      []string `json:"examples,omitempty"`
	ImageURLs     []string `json:"image_urls,omitempty"`
	PartOfSpeech  *string  `json:"part_of_speech,omitempty"`
	Pronunciation *string  `json:"pronunciation,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

// FolderWords is one page of a folder's words.
type FolderWords struct {
	FolderID uuid.UUID `json:"folder_id"`
	UserID   uuid.UUID `json:"user_id"`
	Words    []*Word   `json:"words"`
	Limit    int       `json:"limit"`
	Skip     int       `json:"skip"`
}

const (
	MaxTextLength          = 100
	MaxDefinitionLength    = 2000
	MaxExamples            = 20
	MaxExampleLength       = 500
	MaxImageURLs           = 10
	MaxImageURLLength      = 500
	MaxPartOfSpeechLength  = 50
	MaxPronunciationLength = 200
	MaxNotesLength         = 2000
)

// ErrValidation is matched by every input validation error.
var ErrValidation = errors.New("validation failed")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Normalize trims text and definition, drops blank examples and validates
// every field.
func (in *CreateInput) Normalize() error {
	in.Text = strings.TrimSpace(in.Text)
	in.Definition = strings.TrimSpace(in.Definition)
	in.Examples = cleanExamples(in.Examples)
	if in.ImageURLs == nil {
		in.ImageURLs = []string{}
	}

	return validate(fields{
		text:          &in.Text,
		definition:    &in.Definition,
		examples:      in.Examples,
		imageURLs:     in.ImageURLs,
		partOfSpeech:  in.PartOfSpeech,
		pronunciation: in.Pronunciation,
		notes:         in.Notes,
	})
}

// UpdateInput is a partial update; nil fields are left unchanged. An
// empty slice clears examples or image URLs.
type UpdateInput struct {
	Text          *string   `json:"text,omitempty"`
	Definition    *string   `json:"definition,omitempty"`
	Examples      *[]string `json:"examples,omitempty"`
	ImageURLs     *[]string `json:"image_urls,omitempty"`
	PartOfSpeech  *string   `json:"part_of_speech,omitempty"`
	Pronunciation *string   `json:"pronunciation,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u UpdateInput) IsEmpty() bool {
	return u.Text == nil && u.Definition == nil && u.Examples == nil && u.ImageURLs == nil &&
		u.PartOfSpeech == nil && u.Pronunciation == nil && u.Notes == nil
}

// Normalize applies the same trimming and limits as CreateInput to the
// fields that are set.
func (in *UpdateInput) Normalize() error {
	if in.Text != nil {
		trimmed := strings.TrimSpace(*in.Text)
		in.Text = &trimmed
	}
	if in.Definition != nil {
		trimmed := strings.TrimSpace(*in.Definition)
		in.Definition = &trimmed
	}
	if in.Examples != nil {
		cleaned := cleanExamples(*in.Examples)
		in.Examples = &cleaned
	}

	f := fields{
		text:          in.Text,
		definition:    in.Definition,
		partOfSpeech:  in.PartOfSpeech,
		pronunciation: in.Pronunciation,
		notes:         in.Notes,
	}
	if in.Examples != nil {
		f.examples = *in.Examples
	}
	if in.ImageURLs != nil {
		f.imageURLs = *in.ImageURLs
	}
	return validate(f)
}

// fields holds the values to validate; nil pointers are skipped.
type fields struct {
	text, definition                   *string
	examples, imageURLs                []string
	partOfSpeech, pronunciation, notes *string
}

func validate(f fields) error {
	if f.text != nil {
		if n := utf8.RuneCountInString(*f.text); n == 0 || n > MaxTextLength {
			return invalid("text must be between 1 and %d characters", MaxTextLength)
		}
	}
	if f.definition != nil {
		if n := utf8.RuneCountInString(*f.definition); n == 0 || n > MaxDefinitionLength {
			return invalid("definition must be between 1 and %d characters", MaxDefinitionLength)
		}
	}

	if len(f.examples) > MaxExamples {
		return invalid("at most %d examples are allowed", MaxExamples)
	}
	for _, ex := range f.examples {
		if utf8.RuneCountInString(ex) > MaxExampleLength {
			return invalid("each example must be at most %d characters", MaxExampleLength)
		}
	}

	if len(f.imageURLs) > MaxImageURLs {
		return invalid("at most %d image URLs are allowed", MaxImageURLs)
	}
	for _, u := range f.imageURLs {
		if u == "" || utf8.RuneCountInString(u) > MaxImageURLLength {
			return invalid("each image URL must be between 1 and %d characters", MaxImageURLLength)
		}
	}

	if tooLong(f.partOfSpeech, MaxPartOfSpeechLength) {
		return invalid("part_of_speech must be at most %d characters", MaxPartOfSpeechLength)
	}
	if tooLong(f.pronunciation, MaxPronunciationLength) {
		return invalid("pronunciation must be at most %d characters", MaxPronunciationLength)
	}
	if tooLong(f.notes, MaxNotesLength) {
		return invalid("notes must be at most %d characters", MaxNotesLength)
	}
	return nil
}

// cleanExamples trims examples and drops blank ones.
func cleanExamples(in []string) []string {
	out := make([]string, 0, len(in))
	for _, ex := range in {
		if ex = strings.TrimSpace(ex); ex != "" {
			out = append(out, ex)
		}
	}
	return out
}

func tooLong(s *string, max int) bool {
	return s != nil && utf8.RuneCountInString(*s) > max
}
