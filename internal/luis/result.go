package luis

// IntentNone is the sentinel intent a recognizer app is trained to return
// for utterances it does not understand.
const IntentNone = "None"

// Entity group labels produced by the recognizer app. The pattern-any group
// holds city names matched positionally inside an utterance pattern rather
// than by the trained entity.
const (
	EntityCity           = "City"
	EntityCityPatternAny = "City_patternAny"
)

// IntentScore is one ranked intent.
type IntentScore struct {
	Intent string
	Score  float64
}

// RecognizerResult is the read-only view of one prediction: intents ranked
// by confidence plus entity groups keyed by label.
type RecognizerResult struct {
	Text     string
	Intents  []IntentScore
	Entities map[string][]string
}

// TopIntent returns the highest-ranked intent, or "" when the recognizer
// produced none.
func (r *RecognizerResult) TopIntent() (string, float64) {
	if r == nil || len(r.Intents) == 0 {
		return "", 0
	}
	return r.Intents[0].Intent, r.Intents[0].Score
}

// Location returns the best available city string: the City group first,
// the pattern-any fallback second, "" when neither matched. Callers must
// treat "" as "no location found", not as an error.
func (r *RecognizerResult) Location() string {
	if r == nil {
		return ""
	}
	if vs := r.Entities[EntityCity]; len(vs) > 0 {
		return vs[0]
	}
	if vs := r.Entities[EntityCityPatternAny]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}
