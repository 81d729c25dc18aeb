package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/Benny93/graphleague-go/internal/llm"
	"github.com/Benny93/graphleague-go/internal/vocab"
)

// offDomain lists words that mark questions the graph cannot answer.
var offDomain = map[string]string{
	"skin":       "skins",
	"skins":      "skins",
	"chroma":     "skins",
	"chromas":    "skins",
	"cosmetic":   "skins",
	"lore":       "lore",
	"story":      "lore",
	"backstory":  "lore",
	"voice":      "lore",
	"price":      "the store",
	"rp":         "the store",
	"cost":       "the store",
	"winrate":    "statistics",
	"stats":      "statistics",
	"statistics": "statistics",
	"patch":      "patch notes",
	"nerf":       "patch notes",
	"nerfed":     "patch notes",
	"buffed":     "patch notes",
	"item":       "items and builds",
	"items":      "items and builds",
	"build":      "items and builds",
	"builds":     "items and builds",
	"rune":       "items and builds",
	"runes":      "items and builds",
}

var counterWords = []string{
	"counter", "counters", "countering", "beat", "beats", "against", "vs", "versus",
	"into", "punish", "handle", "stop", "deal",
}

// dashWords name the dash-heavy playstyle the mechanic vocabulary calls High Mobility.
var dashWords = []string{"dash", "dashes", "dashing", "dashers"}

// answeredBy maps a mechanic to the mechanic that beats it.
func answeredBy(m vocab.Mechanic) (vocab.Mechanic, bool) {
	if w, ok := vocab.ImpliedWeakness(m); ok {
		return w.WeakTo, true
	}
	if m == vocab.MechanicInvisibility {
		return vocab.MechanicTrueSight, true
	}
	return "", false
}

// KeywordGenerator is a rule-based Generator for offline use. It reads
// Request.Input, recognizes the champion roster and vocabulary phrases, and
// answers with the same JSON document OutputSchema describes.
type KeywordGenerator struct {
	champions []phrase[string]
	roles     []phrase[vocab.Role]
	mechanics []phrase[vocab.Mechanic]
	archetype []phrase[vocab.Archetype]
}

type phrase[T any] struct {
	words []string
	value T
}

// NewKeywordGenerator creates a generator that recognizes the given champion
// names.
func NewKeywordGenerator(champions []string) *KeywordGenerator {
	g := &KeywordGenerator{
		roles:     vocabPhrases(vocab.RolePhrases()),
		mechanics: vocabPhrases(vocab.MechanicPhrases()),
		archetype: vocabPhrases(vocab.ArchetypePhrases()),
	}
	for _, name := range champions {
		if words := tokenize(name); len(words) > 0 {
			g.champions = append(g.champions, phrase[string]{words: words, value: name})
		}
	}
	sortLongestFirst(g.champions)
	return g
}

func vocabPhrases[T ~string](in []vocab.Phrase[T]) []phrase[T] {
	out := make([]phrase[T], 0, len(in))
	for _, p := range in {
		words := tokenize(p.Text)
		// Phrases built from symbols ("% hp") lose their meaning once tokenized.
		if len(words) == 0 || strings.Join(words, " ") != strings.ReplaceAll(p.Text, "-", " ") {
			continue
		}
		out = append(out, phrase[T]{words: words, value: p.Value})
	}
	sortLongestFirst(out)
	return out
}

func sortLongestFirst[T any](p []phrase[T]) {
	sort.SliceStable(p, func(i, j int) bool { return len(p[i].words) > len(p[j].words) })
}

// Generate implements llm.Generator.
func (g *KeywordGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text := req.Input
	if text == "" {
		text = req.Prompt
	}
	out, err := json.Marshal(g.route(text))
	if err != nil {
		return "", fmt.Errorf("encoding intent: %w", err)
	}
	return string(out), nil
}

func (g *KeywordGenerator) route(text string) Wire {
	s := newSentence(text)
	unknown := Wire{IntentType: string(vocab.IntentUnknown)}

	for _, w := range s.words {
		if topic, ok := offDomain[w]; ok {
			unknown.Reason = fmt.Sprintf("Questions about %s are outside what I know; I can only help with matchups, mechanics and archetypes.", topic)
			return unknown
		}
	}

	trigger := s.first(counterWords)
	// "as adc" is a lane even though "adc" also names the Marksman archetype.
	lane := g.explicitLane(s)

	if champ, ok := match(s, g.champions); ok {
		return Wire{
			IntentType:    string(vocab.IntentCounterPick),
			EnemyChampion: champ.value,
			MyPosition:    g.lane(s, lane),
		}
	}

	if trigger >= 0 {
		if arch, ok := matchAfter(s, g.archetype, trigger); ok {
			return Wire{
				IntentType:     string(vocab.IntentArchetypeCounters),
				EnemyArchetype: string(arch.value),
				MyPosition:     g.lane(s, lane),
			}
		}
		if s.first(dashWords) >= 0 {
			return Wire{
				IntentType:      string(vocab.IntentMechanicSearch),
				MechanicConcept: string(vocab.MechanicAntiDash),
				MyPosition:      g.lane(s, lane),
			}
		}
	}

	if mech, ok := match(s, g.mechanics); ok {
		m := mech.value
		if trigger >= 0 && trigger < mech.at {
			if answer, ok := answeredBy(m); ok {
				m = answer
			}
		}
		return Wire{
			IntentType:      string(vocab.IntentMechanicSearch),
			MechanicConcept: string(m),
			MyPosition:      g.lane(s, lane),
		}
	}

	unknown.Reason = "I could not find a champion, mechanic or archetype in the question."
	return unknown
}

var lanePrepositions = []string{"as", "in", "on", "playing", "for"}

// explicitLane claims a lane phrase that directly follows a preposition.
func (g *KeywordGenerator) explicitLane(s *sentence) string {
	for i, w := range s.words {
		if !slices.Contains(lanePrepositions, w) {
			continue
		}
		for _, p := range g.roles {
			if s.find(p.words, i+1) == i+1 {
				s.claim(i+1, len(p.words))
				return string(p.value)
			}
		}
	}
	return ""
}

// lane returns the explicit lane if there is one, else any lane phrase left.
func (g *KeywordGenerator) lane(s *sentence, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if r, ok := match(s, g.roles); ok {
		return string(r.value)
	}
	return ""
}

// sentence is tokenized input with a record of which words a match used.
type sentence struct {
	words   []string
	claimed []bool
}

func newSentence(text string) *sentence {
	words := tokenize(text)
	return &sentence{words: words, claimed: make([]bool, len(words))}
}

func (s *sentence) first(candidates []string) int {
	for i, w := range s.words {
		if slices.Contains(candidates, w) {
			return i
		}
	}
	return -1
}

// find returns the first unclaimed position of words at or after from.
func (s *sentence) find(words []string, from int) int {
	for i := from; i+len(words) <= len(s.words); i++ {
		ok := true
		for j, w := range words {
			if s.claimed[i+j] || s.words[i+j] != w {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}

func (s *sentence) claim(at, n int) {
	for i := at; i < at+n; i++ {
		s.claimed[i] = true
	}
}

type found[T any] struct {
	value T
	at    int
}

// match claims the longest phrase found anywhere in s.
func match[T any](s *sentence, phrases []phrase[T]) (found[T], bool) {
	return matchAfter(s, phrases, 0)
}

// matchAfter prefers the earliest phrase at or after from and falls back to
// one before it. Longer phrases win at the same position.
func matchAfter[T any](s *sentence, phrases []phrase[T], from int) (found[T], bool) {
	best, bestAt := -1, -1
	for _, start := range []int{from, 0} {
		for i, p := range phrases {
			at := s.find(p.words, start)
			if at < 0 {
				continue
			}
			if bestAt < 0 || at < bestAt {
				best, bestAt = i, at
			}
		}
		if best >= 0 {
			break
		}
	}
	if best < 0 {
		return found[T]{}, false
	}
	s.claim(bestAt, len(phrases[best].words))
	return found[T]{value: phrases[best].value, at: bestAt}, true
}

// tokenize lowercases s, drops apostrophes and splits on everything that is
// not a letter or digit, so "Kai'Sa" and "kaisa" agree.
func tokenize(s string) []string {
	runes := []rune(strings.ToLower(s))
	var b strings.Builder
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'' || r == '’':
			// Possessive "'s" belongs to no word: "Yasuo's" is "yasuo".
			if i+1 < len(runes) && runes[i+1] == 's' && (i+2 == len(runes) || !unicode.IsLetter(runes[i+2])) {
				i++
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}
