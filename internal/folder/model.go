package folder

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Folder groups a user's vocabulary words.
type Folder struct {
	ID          uuid.UUID `json:"id"`
	OwnerUserID uuid.UUID `json:"owner_user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Color       *string   `json:"color"`
	Icon        *string   `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateInput is the body of a folder creation request.
type CreateInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Icon        *string `json:"icon,omitempty"`
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Icon        *string `json:"icon,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u UpdateInput) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Color == nil && u.Icon == nil
}

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
	MaxIconLength        = 16
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ErrValidation is matched by every input validation error.
var ErrValidation = errors.New("validation failed")

var (
	ErrInvalidName        = fmt.Errorf("%w: name must be between 1 and %d characters", ErrValidation, MaxNameLength)
	ErrInvalidDescription = fmt.Errorf("%w: description must be at most %d characters", ErrValidation, MaxDescriptionLength)
	ErrInvalidColor       = fmt.Errorf("%w: color must be a hex value like #1A2B3C", ErrValidation)
	ErrInvalidIcon        = fmt.Errorf("%w: icon must be at most %d characters", ErrValidation, MaxIconLength)
)

// Normalize trims the name and validates every field.
func (in *CreateInput) Normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	return validate(&in.Name, in.Description, in.Color, in.Icon)
}

// Normalize trims the name and validates the fields that are set.
func (in *UpdateInput) Normalize() error {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	return validate(in.Name, in.Description, in.Color, in.Icon)
}

func validate(name, description, color, icon *string) error {
	if name != nil {
		if n := utf8.RuneCountInString(*name); n == 0 || n > MaxNameLength {
			return ErrInvalidName
		}
	}
	if description != nil && utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return ErrInvalidDescription
	}
	if color != nil && !colorPattern.MatchString(*color) {
		return ErrInvalidColor
	}
	if icon != nil && utf8.RuneCountInString(*icon) > MaxIconLength {
		return ErrInvalidIcon
	}
	return nil
}
