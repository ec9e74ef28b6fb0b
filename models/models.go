package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrPetNotFound is returned when a pet is not found
var ErrPetNotFound = errors.New("pet not found")

// ErrArchiveNotFound is returned when a disease archive is not found
var ErrArchiveNotFound = errors.New("disease archive not found")

// ErrEventNotFound is returned when an abnormal event is not found
var ErrEventNotFound = errors.New("abnormal event not found")

type Pet struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Name      string     `json:"name"`
	Species   string     `json:"species"`
	Breed     string     `json:"breed,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AbnormalEvent is a dated symptom record belonging to a pet. It is the
// normalised internal shape: the backend representation allows symptoms as
// plain strings or as objects, and record_date as a date or datetime; both
// are folded into this struct on unmarshal.
type AbnormalEvent struct {
	ID         string      `json:"id"`
	PetID      string      `json:"pet_id,omitempty"`
	RecordedAt EventDate   `json:"record_date"`
	Symptoms   SymptomList `json:"symptoms"`
	Note       string      `json:"note,omitempty"`
	CreatedAt  time.Time   `json:"created_at,omitempty"`
}

// DiseaseArchive holds a narrative disease summary, AI-generated or
// user-edited.
type DiseaseArchive struct {
	ID        string    `json:"id"`
	PetID     string    `json:"pet_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Generated bool      `json:"generated"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArchiveDraft is an unsaved archive being edited; persisted out-of-band with
// a TTL so a closed tab does not lose work.
type ArchiveDraft struct {
	PetID   string    `json:"pet_id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	SavedAt time.Time `json:"saved_at"`
}

// SymptomList accepts both wire shapes for symptoms:
// ["vomiting"] and [{"symptom_name":"vomiting"}].
type SymptomList []string

func (s *SymptomList) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
			continue
		}
		var obj struct {
			SymptomName string `json:"symptom_name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return err
		}
		if name = strings.TrimSpace(obj.SymptomName); name != "" {
			out = append(out, name)
		}
	}
	*s = out
	return nil
}

// eventDateLayouts are tried in order when decoding record_date values.
var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// EventDate wraps time.Time with lenient ISO-8601 decoding. A record_date
// that matches no layout decodes to the zero time rather than failing the
// whole payload; the matcher skips zero-dated events.
type EventDate struct {
	time.Time
}

func (d *EventDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	d.Time = time.Time{}
	return nil
}

func (d EventDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(time.RFC3339))
}
