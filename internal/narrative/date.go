package narrative

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar date with no time component. Section dates and event
// match keys compare on these three fields only.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"` // 1-12
	Day   int `json:"day"`   // 1-31
}

// FromTime builds a Date from the UTC calendar fields of t. Matching always
// goes through UTC so a timestamp near a day boundary cannot shift to the
// neighbouring date.
func FromTime(t time.Time) Date {
	u := t.UTC()
	return Date{Year: u.Year(), Month: int(u.Month()), Day: u.Day()}
}

// One date grammar per language. Group 1 and 2 are month and day except for
// es, where the day comes first.
var (
	cjkDateRe = regexp.MustCompile(`(\d{1,2})月(\d{1,2})日`)
	koDateRe  = regexp.MustCompile(`(\d{1,2})월\s*(\d{1,2})일`)
	enDateRe  = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+(\d{1,2})\b`)
	esDateRe  = regexp.MustCompile(`(?i)\b(\d{1,2})\s+de\s+([a-záéíóúñ]+)`)
)

var enMonthsByPrefix = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var esMonthsByName = map[string]int{
	"enero": 1, "febrero": 2, "marzo": 3, "abril": 4, "mayo": 5, "junio": 6,
	"julio": 7, "agosto": 8, "septiembre": 9, "octubre": 10, "noviembre": 11, "diciembre": 12,
}

// extractFirstDate finds the first date-shaped substring in paragraph
// according to lang's grammar and resolves it to month and day. Only the
// first match counts; a paragraph is assumed to open with its date. Month
// names that resolve to nothing map to month 1 so the paragraph stays
// visible instead of being rejected.
func extractFirstDate(paragraph string, lang Language) (match string, month, day int, ok bool) {
	switch lang {
	case LangZH, LangJA:
		m := cjkDateRe.FindStringSubmatch(paragraph)
		if m == nil {
			return "", 0, 0, false
		}
		return m[0], atoi(m[1]), atoi(m[2]), true
	case LangKO:
		m := koDateRe.FindStringSubmatch(paragraph)
		if m == nil {
			return "", 0, 0, false
		}
		return m[0], atoi(m[1]), atoi(m[2]), true
	case LangEN:
		m := enDateRe.FindStringSubmatch(paragraph)
		if m == nil {
			return "", 0, 0, false
		}
		return m[0], monthFromEnglish(m[1]), atoi(m[2]), true
	case LangES:
		m := esDateRe.FindStringSubmatch(paragraph)
		if m == nil {
			return "", 0, 0, false
		}
		return m[0], monthFromSpanish(m[2]), atoi(m[1]), true
	default:
		return "", 0, 0, false
	}
}

func monthFromEnglish(name string) int {
	key := strings.ToLower(name)
	if len(key) > 3 {
		key = key[:3]
	}
	if m, ok := enMonthsByPrefix[key]; ok {
		return m
	}
	return 1
}

func monthFromSpanish(name string) int {
	if m, ok := esMonthsByName[strings.ToLower(name)]; ok {
		return m
	}
	return 1
}

var enMonthAbbrev = [13]string{"", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var esMonthName = [13]string{"", "enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}

// FormatDate renders a month/day pair the way the given language writes it.
func FormatDate(lang Language, month, day int) string {
	if month < 1 || month > 12 {
		month = 1
	}
	switch lang {
	case LangEN:
		return fmt.Sprintf("%s %d", enMonthAbbrev[month], day)
	case LangES:
		return fmt.Sprintf("%d de %s", day, esMonthName[month])
	case LangKO:
		return fmt.Sprintf("%d월 %d일", month, day)
	default: // zh, ja
		return fmt.Sprintf("%d月%d日", month, day)
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
