package obligation

import "strings"

// Confirmation vocabulary per kind. Matching is plain token and substring
// work over a lowercased, accent-stripped copy of the reply; anything
// smarter belongs to the oracle, not here.

var medicationPhrases = []string{
	"ya tome", "ya los tome", "tome mis medicamentos", "tomados",
}

var medicationTokens = []string{
	"si", "tome", "listo", "tomados",
}

var wellnessTokens = []string{
	"bien", "mal", "regular", "excelente", "triste", "contento", "contenta", "cansado", "cansada",
}

var wellnessPhrases = []string{
	"mas o menos",
}

// Matches reports whether the reply confirms the given obligation kind.
func Matches(kind Kind, reply string) bool {
	text := normalize(reply)
	switch kind {
	case KindMedication:
		return matchAny(text, medicationPhrases, medicationTokens)
	case KindWellness:
		return matchAny(text, wellnessPhrases, wellnessTokens)
	default:
		return false
	}
}

func matchAny(text string, phrases, tokens []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	for _, tok := range strings.Fields(text) {
		tok = strings.Trim(tok, ".,!?¡¿;:")
		for _, want := range tokens {
			if tok == want {
				return true
			}
		}
	}
	return false
}

var accentFold = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
)

func normalize(s string) string {
	return accentFold.Replace(strings.ToLower(s))
}
