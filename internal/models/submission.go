package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FieldValue is either a scalar string or a list of strings (checkbox
// fields carry multiple values). It marshals as a bare string or a JSON
// array so stored values read back exactly as submitted.
type FieldValue struct {
	Scalar string
	List   []string
	IsList bool
}

func ScalarValue(s string) FieldValue { return FieldValue{Scalar: s} }

func ListValue(l []string) FieldValue { return FieldValue{List: l, IsList: true} }

// String renders the value for mail bodies: list values joined by ", ".
func (v FieldValue) String() string {
	if v.IsList {
		out := ""
		for i, s := range v.List {
			if i > 0 {
				out += ", "
			}
			out += s
		}
		return out
	}
	return v.Scalar
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.IsList {
		if v.List == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Scalar)
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = FieldValue{Scalar: s}
		return nil
	}
	var l []string
	if err := json.Unmarshal(data, &l); err != nil {
		return err
	}
	*v = FieldValue{List: l, IsList: true}
	return nil
}

// ValueMap holds submitted values keyed by field label, stored as JSON.
type ValueMap map[string]FieldValue

func (m ValueMap) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *ValueMap) Scan(src any) error {
	return scanJSON(src, m)
}

// StoredFile describes one validated, persisted upload.
type StoredFile struct {
	Filename string `json:"filename"` // name the visitor uploaded under
	Path     string `json:"path"`     // storage path or object key
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	Type     string `json:"type"` // extension, lowercased
}

// FileList is a submission's uploads, stored as a JSON column.
type FileList []StoredFile

func (l FileList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *FileList) Scan(src any) error {
	return scanJSON(src, l)
}

// Submission is the durable archive of one logical submission attempt,
// including its delivery outcome. Records are appended, never deleted;
// the dedup token is unique so a retried attempt updates in place.
type Submission struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	FormID      uuid.UUID `json:"formId" gorm:"type:uuid;index;not null"`
	DedupToken  string    `json:"dedupToken" gorm:"uniqueIndex;not null"`
	Values      ValueMap  `json:"values" gorm:"type:jsonb;not null"`
	Files       FileList  `json:"files,omitempty" gorm:"type:jsonb"`
	MailTo      string    `json:"mailTo"`
	MailSubject string    `json:"mailSubject"`
	MailBody    string    `json:"mailBody" gorm:"type:text"`
	Sent        bool      `json:"sent"`
	MailError   string    `json:"mailError,omitempty"`
	ClientIP    string    `json:"clientIp,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
