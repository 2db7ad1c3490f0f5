package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tranaskommun/tranas-forms/internal/utils"
)

type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldEmail    FieldKind = "email"
	FieldTextarea FieldKind = "textarea"
	FieldSelect   FieldKind = "select"
	FieldRadio    FieldKind = "radio"
	FieldCheckbox FieldKind = "checkbox"
	FieldFile     FieldKind = "file"
)

// DefaultAllowedExtensions applies to file fields without an explicit allow-list.
var DefaultAllowedExtensions = []string{"pdf", "doc", "docx", "jpg", "jpeg", "png", "gif"}

// DefaultMaxSizeMB applies to file fields without an explicit size limit.
const DefaultMaxSizeMB = 5

// FieldSpec describes one form input. The label doubles as the durable
// identifier; Slug() derives the wire field name from it. Options only apply
// to choice kinds, the size/extension limits only to file fields —
// Validate enforces that split.
type FieldSpec struct {
	Label             string    `json:"label"`
	Kind              FieldKind `json:"type"`
	Required          bool      `json:"required,omitempty"`
	Options           []string  `json:"options,omitempty"`
	AllowedExtensions []string  `json:"allowedExtensions,omitempty"`
	MaxSizeMB         int       `json:"maxSizeMB,omitempty"`
}

// Slug returns the wire name the field's value travels under.
func (f FieldSpec) Slug() string {
	return utils.Slugify(f.Label)
}

// IsChoice reports whether the field carries a configured option list.
func (f FieldSpec) IsChoice() bool {
	return f.Kind == FieldSelect || f.Kind == FieldRadio || f.Kind == FieldCheckbox
}

// Extensions returns the allowed file extensions, lowercased, falling back
// to the default set.
func (f FieldSpec) Extensions() []string {
	if len(f.AllowedExtensions) == 0 {
		return DefaultAllowedExtensions
	}
	out := make([]string, 0, len(f.AllowedExtensions))
	for _, e := range f.AllowedExtensions {
		e = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(e, ".")))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// MaxBytes returns the field's upload size limit in bytes.
func (f FieldSpec) MaxBytes() int64 {
	mb := f.MaxSizeMB
	if mb <= 0 {
		mb = DefaultMaxSizeMB
	}
	return int64(mb) * 1024 * 1024
}

// SizeLimitMB returns the effective limit for user-facing messages.
func (f FieldSpec) SizeLimitMB() int {
	if f.MaxSizeMB <= 0 {
		return DefaultMaxSizeMB
	}
	return f.MaxSizeMB
}

func (f FieldSpec) validate() error {
	if strings.TrimSpace(f.Label) == "" {
		return fmt.Errorf("field label must not be empty")
	}
	if f.Slug() == "" {
		return fmt.Errorf("field label %q yields an empty wire name", f.Label)
	}
	switch f.Kind {
	case FieldText, FieldEmail, FieldTextarea:
		if len(f.Options) > 0 {
			return fmt.Errorf("field %q: options are only valid on select, radio and checkbox fields", f.Label)
		}
	case FieldSelect, FieldRadio, FieldCheckbox:
		if len(f.Options) == 0 {
			return fmt.Errorf("field %q: %s fields need at least one option", f.Label, f.Kind)
		}
	case FieldFile:
		if len(f.Options) > 0 {
			return fmt.Errorf("field %q: options are only valid on select, radio and checkbox fields", f.Label)
		}
		if f.MaxSizeMB < 0 {
			return fmt.Errorf("field %q: max size must not be negative", f.Label)
		}
	default:
		return fmt.Errorf("field %q: unknown field type %q", f.Label, f.Kind)
	}
	if f.Kind != FieldFile && (len(f.AllowedExtensions) > 0 || f.MaxSizeMB != 0) {
		return fmt.Errorf("field %q: file constraints are only valid on file fields", f.Label)
	}
	return nil
}

// FieldList is a form's ordered field schema, stored as a JSON column.
type FieldList []FieldSpec

// Validate checks every field and rejects labels whose derived wire names
// collide, since the wire name is what routes a submitted value back to
// its field.
func (l FieldList) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("a form needs at least one field")
	}
	seen := make(map[string]string, len(l))
	for _, f := range l {
		if err := f.validate(); err != nil {
			return err
		}
		slug := f.Slug()
		if other, ok := seen[slug]; ok {
			return fmt.Errorf("fields %q and %q both map to wire name %q", other, f.Label, slug)
		}
		seen[slug] = f.Label
	}
	return nil
}

func (l FieldList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *FieldList) Scan(src any) error {
	return scanJSON(src, l)
}

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
}
