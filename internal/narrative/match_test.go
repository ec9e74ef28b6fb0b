package narrative

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/whiskertrack/whiskertrack/models"
)

type stubTranslator struct {
	entries     map[string]string
	placeholder string
}

func (s stubTranslator) Symptom(_ Language, name string) string {
	if display, ok := s.entries[name]; ok {
		return display
	}
	return name
}

func (s stubTranslator) NoSymptoms(_ Language) string { return s.placeholder }

func event(id, recordDate string, symptoms ...string) models.AbnormalEvent {
	t, err := time.Parse(time.RFC3339, recordDate)
	if err != nil {
		panic(err)
	}
	return models.AbnormalEvent{ID: id, RecordedAt: models.EventDate{Time: t}, Symptoms: symptoms}
}

func TestMatchAttachesEventsByUTCDate(t *testing.T) {
	t.Parallel()
	n := BuildSections("10月5日 嘔吐、軟便\n後來有改善", WithAssumedYear(2025))
	m := Matcher{Translator: stubTranslator{placeholder: "暫無症狀"}}

	got := m.Match(n, []models.AbnormalEvent{event("7", "2025-10-05T00:00:00Z", "嘔吐")})
	if len(got.Sections) != 2 {
		t.Fatalf("got %d sections", len(got.Sections))
	}
	matched := got.Sections[0].MatchedEvents
	if len(matched) != 1 {
		t.Fatalf("got %d matched events, want 1", len(matched))
	}
	if matched[0].ID != "7" || matched[0].DisplayDate != "10月5日" || matched[0].SymptomsDisplay != "嘔吐" {
		t.Fatalf("matched = %+v", matched[0])
	}
	if len(got.Sections[1].MatchedEvents) != 0 {
		t.Fatalf("dateless section must not match, got %+v", got.Sections[1].MatchedEvents)
	}
}

func TestMatchUsesUTCDayBoundary(t *testing.T) {
	t.Parallel()
	// 2025-10-05T23:30-05:00 is 2025-10-06 in UTC and must not match Oct 5.
	n := BuildSections("10月5日 嘔吐\n10月6日 復診", WithAssumedYear(2025))
	m := Matcher{}
	got := m.Match(n, []models.AbnormalEvent{event("1", "2025-10-05T23:30:00-05:00", "vomiting")})
	if len(got.Sections[0].MatchedEvents) != 0 {
		t.Fatalf("event leaked into Oct 5 section: %+v", got.Sections[0].MatchedEvents)
	}
	if len(got.Sections[1].MatchedEvents) != 1 {
		t.Fatalf("event missing from Oct 6 section")
	}
}

func TestMatchManyToOne(t *testing.T) {
	t.Parallel()
	n := BuildSections("10月5日 嘔吐\n10月5日 軟便", WithAssumedYear(2025))
	m := Matcher{}
	events := []models.AbnormalEvent{
		event("a", "2025-10-05T03:00:00Z", "vomiting"),
		event("b", "2025-10-05T20:00:00Z", "soft stool"),
	}
	got := m.Match(n, events)
	for i, s := range got.Sections {
		if len(s.MatchedEvents) != 2 {
			t.Fatalf("section %d: got %d matches, want both events in both same-date sections", i, len(s.MatchedEvents))
		}
	}
}

func TestMatchFormatsDisplayDatePerLanguage(t *testing.T) {
	t.Parallel()
	cases := []struct {
		text string
		want string
	}{
		{"Dec 3 vomiting occurred and worsened", "Dec 3"},
		{"El 3 de diciembre tuvo vómitos y diarrea", "3 de diciembre"},
		{"12월 3일 구토와 설사 증상", "12월 3일"},
		{"12月3日 嘔吐、軟便症狀", "12月3日"},
	}
	m := Matcher{}
	for _, tc := range cases {
		n := BuildSections(tc.text, WithAssumedYear(2025))
		got := m.Match(n, []models.AbnormalEvent{event("1", "2025-12-03T00:00:00Z", "vomiting")})
		if len(got.Sections) == 0 || len(got.Sections[0].MatchedEvents) != 1 {
			t.Fatalf("%q: no match produced (lang %s, sections %+v)", tc.text, n.Language, got.Sections)
		}
		if dd := got.Sections[0].MatchedEvents[0].DisplayDate; dd != tc.want {
			t.Fatalf("%q: display date = %q, want %q", tc.text, dd, tc.want)
		}
	}
}

func TestMatchTranslatesSymptoms(t *testing.T) {
	t.Parallel()
	tr := stubTranslator{entries: map[string]string{"vomiting": "嘔吐", "soft stool": "軟便"}}
	n := BuildSections("10月5日 不舒服", WithAssumedYear(2025))
	m := Matcher{Translator: tr}
	got := m.Match(n, []models.AbnormalEvent{event("1", "2025-10-05T00:00:00Z", "vomiting", "soft stool")})
	if sd := got.Sections[0].MatchedEvents[0].SymptomsDisplay; sd != "嘔吐、軟便" {
		t.Fatalf("symptoms display = %q", sd)
	}
}

func TestMatchNoSymptomsPlaceholder(t *testing.T) {
	t.Parallel()
	tr := stubTranslator{placeholder: "no symptoms recorded"}
	n := BuildSections("Dec 3 vomiting occurred and worsened", WithAssumedYear(2025))
	m := Matcher{Translator: tr}
	got := m.Match(n, []models.AbnormalEvent{event("1", "2025-12-03T00:00:00Z")})
	if sd := got.Sections[0].MatchedEvents[0].SymptomsDisplay; sd != "no symptoms recorded" {
		t.Fatalf("symptoms display = %q", sd)
	}
}

func TestMatchSkipsUnparseableEventDates(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	n := BuildSections("10月5日 嘔吐", WithAssumedYear(2025))
	m := Matcher{Logger: logger}
	bad := models.AbnormalEvent{ID: "bad", Symptoms: models.SymptomList{"vomiting"}}
	got := m.Match(n, []models.AbnormalEvent{bad, event("ok", "2025-10-05T00:00:00Z", "vomiting")})
	if len(got.Sections[0].MatchedEvents) != 1 || got.Sections[0].MatchedEvents[0].ID != "ok" {
		t.Fatalf("matched = %+v, want only the valid event", got.Sections[0].MatchedEvents)
	}
	if !strings.Contains(buf.String(), "bad") {
		t.Fatalf("expected skipped event to be logged, log: %q", buf.String())
	}
}

func TestMatchDoesNotMutateInputs(t *testing.T) {
	t.Parallel()
	n := BuildSections("10月5日 嘔吐", WithAssumedYear(2025))
	events := []models.AbnormalEvent{event("1", "2025-10-05T00:00:00Z", "vomiting")}
	m := Matcher{}
	_ = m.Match(n, events)
	if len(n.Sections[0].MatchedEvents) != 0 {
		t.Fatalf("input narrative mutated: %+v", n.Sections[0].MatchedEvents)
	}
	if len(events[0].Symptoms) != 1 || events[0].Symptoms[0] != "vomiting" {
		t.Fatalf("input events mutated: %+v", events)
	}
}

func TestMatchFallbackShapePassesThrough(t *testing.T) {
	t.Parallel()
	n := BuildSections("")
	m := Matcher{}
	got := m.Match(n, []models.AbnormalEvent{event("1", "2025-10-05T00:00:00Z", "vomiting")})
	if got.Sections != nil || got.Fallback != n.Fallback {
		t.Fatalf("fallback shape not preserved: %+v", got)
	}
}
