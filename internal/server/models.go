package server

import (
	"time"

	"github.com/whiskertrack/whiskertrack/internal/narrative"
	"github.com/whiskertrack/whiskertrack/models"
)

// HTTPError is a generic error envelope returned by the server.
type HTTPError struct {
	Error string `json:"error"`
}

// AuthSignupRequest represents the signup payload.
type AuthSignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthLoginRequest represents the login payload.
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// IDResponse is a generic id response wrapper.
type IDResponse struct {
	ID string `json:"id"`
}

// MeResponse returns the current authenticated user id.
type MeResponse struct {
	UserID string `json:"user_id"`
}

// CreatePetRequest represents a new pet payload.
type CreatePetRequest struct {
	Name      string     `json:"name"`
	Species   string     `json:"species"`
	Breed     string     `json:"breed"`
	BirthDate *time.Time `json:"birth_date"`
}

// CreateEventRequest represents a new abnormal-event payload. Symptoms and
// record_date accept both backend wire shapes (see models).
type CreateEventRequest struct {
	RecordDate models.EventDate   `json:"record_date"`
	Symptoms   models.SymptomList `json:"symptoms"`
	Note       string             `json:"note"`
}

// CalendarResponse lists the days of one month that carry abnormal events,
// for symptom-date calendar highlighting.
type CalendarResponse struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Days  []int `json:"days"`
}

// CreateArchiveRequest represents a new disease-archive payload.
type CreateArchiveRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateArchiveRequest edits an archive's title or content.
type UpdateArchiveRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GenerateArchiveRequest asks the LLM for a narrative over a date window.
type GenerateArchiveRequest struct {
	Title string     `json:"title"`
	From  *time.Time `json:"from,omitempty"`
	To    *time.Time `json:"to,omitempty"`
}

// ArchiveDetailResponse is an archive plus its computed section structure,
// the shape the renderer consumes.
type ArchiveDetailResponse struct {
	Archive   models.DiseaseArchive `json:"archive"`
	Narrative narrative.Narrative   `json:"narrative"`
}

// SaveDraftRequest autosaves an archive draft.
type SaveDraftRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AssistantRequest is a free-form question about a pet.
type AssistantRequest struct {
	Message string `json:"message"`
}

// AssistantResponse carries the assistant's reply.
type AssistantResponse struct {
	Reply string `json:"reply"`
}
