package narrative

import (
	"regexp"
	"strings"
	"time"
)

// Section is a contiguous run of narrative content, optionally anchored to a
// single calendar date. Date is nil exactly when the opening paragraph had no
// recognisable date; a partial date is never produced.
type Section struct {
	DateText      string         `json:"date_text,omitempty"`
	Date          *Date          `json:"date,omitempty"`
	ContentLines  []string       `json:"content_lines"`
	MatchedEvents []MatchedEvent `json:"matched_events"`
}

// Narrative is the pipeline output. Either Sections is populated (one per
// non-blank paragraph, source order, dates may repeat or go backwards) or the
// whole text failed to parse into paragraphs and the result is the fallback
// shape: nil Sections with Fallback carrying the raw original text so the
// caller can render a generic block. A parsed text always yields at least one
// section, so nil Sections identifies the fallback shape unambiguously.
type Narrative struct {
	Language Language  `json:"language"`
	Sections []Section `json:"sections,omitempty"`
	Fallback string    `json:"fallback,omitempty"`
}

type sectionConfig struct {
	year     int
	fallback Language
}

// SectionOption configures section building.
type SectionOption func(*sectionConfig)

// WithAssumedYear overrides the year stamped on every dated section. None of
// the five date grammars carries a year token, so by default sections get the
// current UTC year at processing time; narratives spanning a year boundary
// are mis-dated unless the caller supplies one.
func WithAssumedYear(year int) SectionOption {
	return func(cfg *sectionConfig) {
		if year > 0 {
			cfg.year = year
		}
	}
}

// WithFallbackLanguage sets the language used when detection stays under the
// score floor (default zh).
func WithFallbackLanguage(l Language) SectionOption {
	return func(cfg *sectionConfig) {
		cfg.fallback = l
	}
}

var paragraphSplitRe = regexp.MustCompile(`\n+`)

// BuildSections splits text into newline-delimited paragraphs, detects the
// narrative language once, and opens a dated section for every paragraph
// whose first date-shaped substring parses. Later dates in the same paragraph
// are ignored; the paragraph is kept verbatim as the section's sole content
// line. Paragraphs without a date become dateless sections. Consecutive
// paragraphs with the same date stay separate sections.
func BuildSections(text string, opts ...SectionOption) Narrative {
	cfg := sectionConfig{year: time.Now().UTC().Year(), fallback: LangZH}
	for _, opt := range opts {
		opt(&cfg)
	}

	var paragraphs []string
	for _, p := range paragraphSplitRe.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) == 0 {
		return Narrative{Language: normalizeFallback(cfg.fallback), Fallback: text}
	}

	lang := Detect(text, cfg.fallback)
	sections := make([]Section, 0, len(paragraphs))
	for _, p := range paragraphs {
		s := Section{ContentLines: []string{p}, MatchedEvents: []MatchedEvent{}}
		if match, month, day, ok := extractFirstDate(p, lang); ok {
			s.DateText = match
			s.Date = &Date{Year: cfg.year, Month: month, Day: day}
		}
		sections = append(sections, s)
	}
	return Narrative{Language: lang, Sections: sections}
}
