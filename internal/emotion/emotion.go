package emotion

import "strings"

// State is the closed emotion vocabulary. Classifications are
// per-utterance and independent; nothing smooths them over time.
type State string

const (
	Neutral    State = "neutral"
	Happy      State = "happy"
	Frustrated State = "frustrated"
	Confused   State = "confused"
)

func (s State) Valid() bool {
	switch s {
	case Neutral, Happy, Frustrated, Confused:
		return true
	}
	return false
}

type rule struct {
	state    State
	phrases  []string // case-insensitive substring
	prefixes []string // prefix match on tokens
}

// Rule order matters: first match wins.
var rules = []rule{
	{Frustrated, []string{"expensive", "too much", "can't afford", "cant afford"}, []string{"frustrat"}},
	{Happy, []string{"love", "perfect", "great"}, []string{"thank"}},
	{Confused, []string{"help"}, []string{"confus"}},
}

// Heuristic maps a transcript to an emotional state using the lexical
// decision table. It never inspects audio.
func Heuristic(transcript string) State {
	text := strings.ToLower(transcript)
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r != '\'' && (r < 'a' || r > 'z')
	})

	for _, r := range rules {
		for _, p := range r.phrases {
			if strings.Contains(text, p) {
				return r.state
			}
		}
		for _, pre := range r.prefixes {
			for _, tok := range tokens {
				if strings.HasPrefix(tok, pre) {
					return r.state
				}
			}
		}
	}
	return Neutral
}
