package narrative

import (
	"log"
	"strings"

	"github.com/whiskertrack/whiskertrack/models"
)

// MatchedEvent is an abnormal event whose date coincides with a section's
// date, annotated for display. Recomputed on every pass, never persisted.
type MatchedEvent struct {
	ID              string `json:"id"`
	DisplayDate     string `json:"display_date"`
	SymptomsDisplay string `json:"symptoms_display"`
}

// Translator renders symptom names for display in a given language. It is
// injected rather than looked up globally so the matcher stays a pure
// projection.
type Translator interface {
	Symptom(lang Language, name string) string
	NoSymptoms(lang Language) string
}

// Matcher attaches abnormal events to dated sections.
type Matcher struct {
	Translator Translator
	Logger     *log.Logger
}

// Match returns a fresh Narrative whose dated sections carry every event with
// the same UTC calendar date. Many events may share one date and the same
// event lands in every section carrying that date. Dateless sections and the
// fallback shape pass through with no matches. Events with a zero recorded
// time (unparseable record_date upstream) are skipped and logged, never
// fatal. Neither input is mutated.
func (m Matcher) Match(n Narrative, events []models.AbnormalEvent) Narrative {
	out := Narrative{Language: n.Language, Fallback: n.Fallback}
	if len(n.Sections) == 0 {
		return out
	}

	byDate := make(map[Date][]models.AbnormalEvent)
	for _, ev := range events {
		if ev.RecordedAt.IsZero() {
			if m.Logger != nil {
				m.Logger.Printf("skipping event %s: unparseable record date", ev.ID)
			}
			continue
		}
		key := FromTime(ev.RecordedAt.Time)
		byDate[key] = append(byDate[key], ev)
	}

	out.Sections = make([]Section, len(n.Sections))
	for i, s := range n.Sections {
		enriched := Section{
			DateText:      s.DateText,
			Date:          s.Date,
			ContentLines:  s.ContentLines,
			MatchedEvents: []MatchedEvent{},
		}
		if s.Date != nil {
			for _, ev := range byDate[*s.Date] {
				enriched.MatchedEvents = append(enriched.MatchedEvents, MatchedEvent{
					ID:              ev.ID,
					DisplayDate:     FormatDate(n.Language, s.Date.Month, s.Date.Day),
					SymptomsDisplay: m.symptomsDisplay(n.Language, ev.Symptoms),
				})
			}
		}
		out.Sections[i] = enriched
	}
	return out
}

func (m Matcher) symptomsDisplay(lang Language, symptoms []string) string {
	tr := m.Translator
	if tr == nil {
		tr = identityTranslator{}
	}
	if len(symptoms) == 0 {
		return tr.NoSymptoms(lang)
	}
	names := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		names = append(names, tr.Symptom(lang, s))
	}
	sep := ", "
	if lang == LangZH || lang == LangJA {
		sep = "、"
	}
	return strings.Join(names, sep)
}

// identityTranslator keeps the matcher total when no translator is wired:
// names pass through untouched.
type identityTranslator struct{}

func (identityTranslator) Symptom(_ Language, name string) string { return name }
func (identityTranslator) NoSymptoms(_ Language) string           { return "no symptoms recorded" }
