// Package symptoms provides the symptom-name display tables. It is a pure
// lookup service handed to the narrative matcher; nothing here is global or
// mutable after construction.
package symptoms

import "github.com/whiskertrack/whiskertrack/internal/narrative"

// Table maps canonical symptom names to per-language display names.
type Table struct {
	entries     map[narrative.Language]map[string]string
	noSymptoms  map[narrative.Language]string
	defaultLang narrative.Language
}

// NewTable returns the built-in display tables. Canonical names are the
// lower-case English identifiers the backend stores.
func NewTable() *Table {
	return &Table{
		defaultLang: narrative.LangEN,
		entries: map[narrative.Language]map[string]string{
			narrative.LangZH: {
				"vomiting": "嘔吐", "diarrhea": "腹瀉", "soft stool": "軟便",
				"loss of appetite": "食慾不振", "lethargy": "精神不濟", "coughing": "咳嗽",
				"sneezing": "打噴嚏", "itching": "搔癢", "fever": "發燒", "hair loss": "掉毛",
			},
			narrative.LangJA: {
				"vomiting": "嘔吐", "diarrhea": "下痢", "soft stool": "軟便",
				"loss of appetite": "食欲不振", "lethargy": "元気がない", "coughing": "咳",
				"sneezing": "くしゃみ", "itching": "かゆみ", "fever": "発熱", "hair loss": "脱毛",
			},
			narrative.LangKO: {
				"vomiting": "구토", "diarrhea": "설사", "soft stool": "무른 변",
				"loss of appetite": "식욕 부진", "lethargy": "기력 저하", "coughing": "기침",
				"sneezing": "재채기", "itching": "가려움", "fever": "발열", "hair loss": "탈모",
			},
			narrative.LangES: {
				"vomiting": "vómitos", "diarrhea": "diarrea", "soft stool": "heces blandas",
				"loss of appetite": "falta de apetito", "lethargy": "letargo", "coughing": "tos",
				"sneezing": "estornudos", "itching": "picazón", "fever": "fiebre", "hair loss": "caída de pelo",
			},
		},
		noSymptoms: map[narrative.Language]string{
			narrative.LangZH: "暫無症狀記錄",
			narrative.LangJA: "症状の記録なし",
			narrative.LangKO: "증상 기록 없음",
			narrative.LangES: "sin síntomas registrados",
			narrative.LangEN: "no symptoms recorded",
		},
	}
}

// Symptom returns the display name for a canonical symptom in lang. Unknown
// names (already-localised user input included) pass through verbatim so the
// record stays visible.
func (t *Table) Symptom(lang narrative.Language, name string) string {
	if m, ok := t.entries[lang]; ok {
		if display, ok := m[name]; ok {
			return display
		}
	}
	return name
}

// NoSymptoms returns the placeholder shown for a matched event that carries
// no symptom names.
func (t *Table) NoSymptoms(lang narrative.Language) string {
	if s, ok := t.noSymptoms[lang]; ok {
		return s
	}
	return t.noSymptoms[t.defaultLang]
}
