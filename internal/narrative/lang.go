// Package narrative turns free-text disease summaries into dated sections and
// cross-references abnormal-event records against them. Every function here is
// a pure transform: no shared state, safe to call repeatedly and concurrently.
package narrative

import (
	"regexp"
	"strings"
)

// Language is a narrative language the pipeline understands.
type Language string

const (
	LangZH Language = "zh"
	LangEN Language = "en"
	LangES Language = "es"
	LangJA Language = "ja"
	LangKO Language = "ko"
)

// languageOrder fixes both the scoring iteration and the tie-break: when two
// languages score equally the earlier one wins. Detection must never depend
// on map iteration order.
var languageOrder = []Language{LangZH, LangEN, LangES, LangJA, LangKO}

// Supported reports whether l is one of the recognised language codes.
func Supported(l Language) bool {
	for _, lang := range languageOrder {
		if lang == l {
			return true
		}
	}
	return false
}

// detectionFloor is the minimum winning score; below it detection is
// considered noise and the caller's fallback language is used instead.
const detectionFloor = 3

// Pattern weights. A date token is the strongest signal a short narrative
// carries, so date patterns are weighted an order of magnitude above lexical
// ones and a single date occurrence clears the floor on its own.
const (
	dateWeight    = 10
	lexicalWeight = 1
	markerWeight  = 2
)

type patternWeight struct {
	re     *regexp.Regexp
	weight int
}

// Per-language scoring tables, named so weights can be tuned and tested apart
// from the scoring loop.
var (
	zhPatterns = []patternWeight{
		{regexp.MustCompile(`\d{1,2}月\d{1,2}日`), dateWeight},
		{regexp.MustCompile(`[的了吗呢吧很和是在有天后次]`), lexicalWeight},
		{regexp.MustCompile(`症状|症狀|呕吐|嘔吐|软便|軟便|食欲|食慾|好转|好轉|改善|医院|醫院|检查|檢查`), markerWeight},
	}
	enPatterns = []patternWeight{
		{regexp.MustCompile(`(?i)\b(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+\d{1,2}\b`), dateWeight},
		{regexp.MustCompile(`(?i)\b(?:the|and|was|were|with|has|had|after|no|not)\b`), lexicalWeight},
		{regexp.MustCompile(`(?i)\b(?:vomit(?:ing|ed)?|diarrhea|symptom(?:s)?|improv(?:ed|ing|ement)|appetite|vet(?:erinarian)?|occurred)\b`), markerWeight},
	}
	esPatterns = []patternWeight{
		{regexp.MustCompile(`(?i)\b\d{1,2}\s+de\s+(?:enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)\b`), dateWeight},
		{regexp.MustCompile(`(?i)\b(?:el|la|los|las|un|una|de|del|que|con|sin|pero)\b`), lexicalWeight},
		{regexp.MustCompile(`(?i)(?:vómito|vomitó|diarrea|síntoma|mejoró|mejoría|apetito|veterinari)`), markerWeight},
	}
	jaPatterns = []patternWeight{
		{regexp.MustCompile(`\d{1,2}月\d{1,2}日`), dateWeight},
		{regexp.MustCompile(`[ぁ-ゖ]`), lexicalWeight},
		{regexp.MustCompile(`です|ます|ました|して|という|について|嘔吐|下痢|症状|改善|食欲`), markerWeight},
	}
	koPatterns = []patternWeight{
		{regexp.MustCompile(`\d{1,2}월\s*\d{1,2}일`), dateWeight},
		{regexp.MustCompile(`[가-힣]`), lexicalWeight},
		{regexp.MustCompile(`구토|설사|증상|호전|식욕|병원`), markerWeight},
	}

	scoringTables = map[Language][]patternWeight{
		LangZH: zhPatterns,
		LangEN: enPatterns,
		LangES: esPatterns,
		LangJA: jaPatterns,
		LangKO: koPatterns,
	}
)

// Detect guesses the narrative's language by summing weighted non-overlapping
// pattern matches per language and picking the strictly highest score. Empty
// text skips scoring entirely. A winning score below the floor falls back to
// the UI language, or zh when that is not a supported code.
func Detect(text string, fallback Language) Language {
	if strings.TrimSpace(text) == "" {
		return normalizeFallback(fallback)
	}
	var best Language
	bestScore := 0
	for _, lang := range languageOrder {
		score := 0
		for _, pw := range scoringTables[lang] {
			score += pw.weight * len(pw.re.FindAllStringIndex(text, -1))
		}
		if score > bestScore {
			best, bestScore = lang, score
		}
	}
	if bestScore < detectionFloor {
		return normalizeFallback(fallback)
	}
	return best
}

func normalizeFallback(l Language) Language {
	if Supported(l) {
		return l
	}
	return LangZH
}
