package leads

import "strings"

// SegmentOther buckets listings whose scraped category matches no known sector.
const SegmentOther = "Outros"

var segmentRules = []struct {
	segment  string
	keywords []string
}{
	{"Saúde & Fitness", []string{"natural", "suplemento", "academia", "fit"}},
	{"Alimentação", []string{"restaurante", "pizzaria", "hamburgueria", "lanchonete"}},
	{"Clínicas & Saúde", []string{"médic", "clinica", "saúde"}},
	{"Automotivo", []string{"oficina", "mecânic", "auto"}},
	{"Jurídico", []string{"advoga", "jurídic"}},
	{"Varejo & Comércio", []string{"loja", "varejo", "comércio"}},
}

// NormalizeSegment maps a raw scraped category to one of the fixed sector
// buckets. Matching is keyword-based and case-insensitive; the rule order is
// significant because the first hit wins.
func NormalizeSegment(rawCategory string) string {
	if strings.TrimSpace(rawCategory) == "" {
		return SegmentOther
	}
	lowered := strings.ToLower(rawCategory)
	for _, rule := range segmentRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.segment
			}
		}
	}
	return SegmentOther
}

// Segments lists every sector bucket in rule order, ending with the catch-all.
func Segments() []string {
	out := make([]string, 0, len(segmentRules)+1)
	for _, rule := range segmentRules {
		out = append(out, rule.segment)
	}
	return append(out, SegmentOther)
}
