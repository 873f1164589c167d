package search

import (
	"regexp"
	"strconv"
	"strings"
)

// Domain dictionaries. Keys are corrected lowercase tokens; values are the
// canonical filter values.
var (
	emotionDict = map[string]string{
		"sad": "sad", "sadness": "sad", "sorrow": "sad",
		"melancholy": "melancholy",
		"angry":      "angry", "furious": "angry", "rage": "angry",
		"happy": "happy", "joyful": "happy", "joy": "happy",
		"desperate": "desperate", "desperation": "desperate",
		"fearful": "fearful", "scared": "fearful", "afraid": "fearful",
		"anxious": "anxious", "nervous": "anxious",
		"grief": "grief", "grieving": "grief", "heartbroken": "grief",
		"hopeful": "hopeful", "bitter": "bitter", "defiant": "defiant",
	}

	genderDict = map[string]string{
		"woman": "female", "women": "female", "female": "female",
		"girl": "female", "lady": "female", "actress": "female",
		"man": "male", "men": "male", "male": "male", "guy": "male",
	}

	ageDict = map[string]string{
		"teen": "teens", "teens": "teens", "teenager": "teens", "teenage": "teens",
		"20s": "20s", "twenties": "20s",
		"30s": "30s", "thirties": "30s",
		"40s": "40s", "forties": "40s",
		"50s": "50s", "fifties": "50s",
		"60s": "60+", "sixties": "60+", "60+": "60+", "elderly": "60+",
		// "young" spans teens and 20s; the retriever expands it
		"young": "young",
	}

	themeDict = map[string]string{
		"betrayal": "betrayal", "betrayed": "betrayal",
		"revenge": "revenge", "vengeance": "revenge",
		"love": "love", "romance": "love",
		"loss": "loss", "death": "death", "dying": "death",
		"power": "power", "ambition": "ambition",
		"family": "family", "jealousy": "jealousy", "envy": "jealousy",
		"redemption": "redemption", "identity": "identity",
		"war": "war", "justice": "justice", "madness": "madness",
		"isolation": "isolation", "loneliness": "isolation",
		"hope": "hope", "forgiveness": "forgiveness", "guilt": "guilt",
	}

	// characterTypeDict expands archetypes into theme sets
	characterTypeDict = map[string][]string{
		"villain":  {"power", "revenge", "ambition"},
		"hero":     {"justice", "hope"},
		"lover":    {"love"},
		"mother":   {"family"},
		"father":   {"family"},
		"outsider": {"isolation", "identity"},
	}

	// famousWorks maps recognized titles to the author constraint
	famousWorks = map[string]string{
		"hamlet":  "William Shakespeare",
		"macbeth": "William Shakespeare",
		"othello": "William Shakespeare",
	}

	// famousCharacters maps recognized character names to the
	// character_name constraint
	famousCharacters = map[string]string{
		"ophelia": "Ophelia",
		"juliet":  "Juliet",
		"romeo":   "Romeo",
		"iago":    "Iago",
		"blanche": "Blanche",
		"nora":    "Nora",
	}

	authorDict = map[string]string{
		"shakespeare": "William Shakespeare",
		"chekhov":     "Anton Chekhov",
		"ibsen":       "Henrik Ibsen",
		"williams":    "Tennessee Williams",
		"tennessee":   "Tennessee Williams",
		"miller":      "Arthur Miller",
		"wilde":       "Oscar Wilde",
		"shaw":        "George Bernard Shaw",
		"moliere":     "Moliere",
		"sophocles":   "Sophocles",
		"euripides":   "Euripides",
	}

	categoryDict = map[string]string{
		"classical": "classical", "classic": "classical",
		"contemporary": "contemporary", "modern": "contemporary",
	}

	toneDict = map[string]string{
		"funny": "comedic", "comedic": "comedic", "comic": "comedic",
		"hilarious": "comedic", "humorous": "comedic", "lighthearted": "comedic",
		"dramatic": "dramatic", "serious": "dramatic", "intense": "dramatic",
		"dark": "dark", "whimsical": "whimsical",
	}
)

var (
	actRe      = regexp.MustCompile(`\bact\s+(\d+|[ivxlc]+)\b`)
	sceneRe    = regexp.MustCompile(`\bscene\s+(\d+|[ivxlc]+)\b`)
	yearsOldRe = regexp.MustCompile(`\b(\d+)\s+years?\s+old\b`)
	durationRe = regexp.MustCompile(`\b(?:under\s+|less than\s+)?(\d+)(?:\s*-\s*(\d+))?\s*(minutes?|mins?|seconds?|secs?)\b`)
)

// shortDurationSeconds is the cap implied by "short"
const shortDurationSeconds = 90

// Extraction is the keyword extractor's output
type Extraction struct {
	Filters    Filters
	Confidence float64
}

// Extractor pulls a partial Filters struct out of a corrected query using
// regex and the domain dictionaries.
type Extractor struct{}

// NewExtractor creates a keyword extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract scans the query left to right. The first match wins for every
// scalar key; themes accumulate all matches.
func (e *Extractor) Extract(query string) Extraction {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Extraction{}
	}

	var f Filters
	found := 0

	// Phrase-level patterns first, so their tokens don't double count
	if m := actRe.FindStringSubmatch(q); m != nil {
		if n, ok := parseActSceneNumber(m[1]); ok {
			f.Act = &n
			found++
		}
	}
	if m := sceneRe.FindStringSubmatch(q); m != nil {
		if n, ok := parseActSceneNumber(m[1]); ok {
			f.Scene = &n
			found++
		}
	}

	// "N years old" fixes the age range and shields "old" from the
	// dictionaries.
	agePhrase := false
	if m := yearsOldRe.FindStringSubmatch(q); m != nil {
		if years, err := strconv.Atoi(m[1]); err == nil {
			if r := ageRangeForYears(years); r != "" {
				f.AgeRange = r
				found++
				agePhrase = true
			}
		}
	}

	if secs, ok := parseDuration(q); ok {
		f.MaxDurationSeconds = &secs
		found++
	}

	tokens := strings.Fields(q)
	themeSeen := map[string]bool{}
	addTheme := func(th string) {
		if !themeSeen[th] {
			themeSeen[th] = true
			f.Themes = append(f.Themes, th)
		}
	}

	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,!?\"'")

		if v, ok := emotionDict[tok]; ok && f.Emotion == "" {
			f.Emotion = v
			found++
			continue
		}
		if v, ok := genderDict[tok]; ok && f.Gender == "" {
			f.Gender = v
			found++
			continue
		}
		if v, ok := ageDict[tok]; ok && !agePhrase && f.AgeRange == "" {
			f.AgeRange = v
			found++
			continue
		}
		if v, ok := themeDict[tok]; ok {
			if !themeSeen[v] {
				found++
			}
			addTheme(v)
			continue
		}
		if themes, ok := characterTypeDict[tok]; ok {
			fresh := false
			for _, th := range themes {
				if !themeSeen[th] {
					fresh = true
				}
				addTheme(th)
			}
			if fresh {
				found++
			}
			continue
		}
		if author, ok := famousWorks[tok]; ok && f.Author == "" {
			f.Author = author
			found++
			continue
		}
		if name, ok := famousCharacters[tok]; ok && f.CharacterName == "" {
			f.CharacterName = name
			found++
			continue
		}
		if v, ok := authorDict[tok]; ok && f.Author == "" {
			f.Author = v
			found++
			continue
		}
		if v, ok := categoryDict[tok]; ok && f.Category == "" {
			f.Category = v
			found++
			continue
		}
		if v, ok := toneDict[tok]; ok && f.Tone == "" {
			f.Tone = v
			found++
			continue
		}
		if tok == "short" && f.MaxDurationSeconds == nil {
			secs := shortDurationSeconds
			f.MaxDurationSeconds = &secs
			found++
		}
	}

	return Extraction{
		Filters:    f,
		Confidence: confidence(len(tokens), found),
	}
}

// confidence scores how completely the dictionaries explained the query
func confidence(tokens, found int) float64 {
	if tokens == 0 {
		return 0
	}
	if found >= tokens-1 {
		return 1.0
	}
	if tokens > 7 && found < 2 {
		return 0.2
	}
	c := 0.3 + 0.6*float64(found)/float64(tokens)
	if c > 0.9 {
		c = 0.9
	}
	return c
}

// parseActSceneNumber accepts decimal or roman numerals I..C
func parseActSceneNumber(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, n > 0
	}
	return parseRoman(s)
}

var romanValues = map[byte]int{'i': 1, 'v': 5, 'x': 10, 'l': 50, 'c': 100}

// parseRoman parses lowercase roman numerals up to C (100)
func parseRoman(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	total := 0
	for i := 0; i < len(s); i++ {
		v, ok := romanValues[s[i]]
		if !ok {
			return 0, false
		}
		if i+1 < len(s) && romanValues[s[i+1]] > v {
			total -= v
		} else {
			total += v
		}
	}
	if total < 1 || total > 100 {
		return 0, false
	}
	return total, true
}

// ageRangeForYears buckets a literal age into the closed age vocabulary
func ageRangeForYears(years int) string {
	switch {
	case years >= 13 && years <= 19:
		return "teens"
	case years >= 20 && years <= 29:
		return "20s"
	case years >= 30 && years <= 39:
		return "30s"
	case years >= 40 && years <= 49:
		return "40s"
	case years >= 50 && years <= 59:
		return "50s"
	case years >= 60:
		return "60+"
	default:
		return ""
	}
}

// parseDuration extracts an upper duration bound in seconds. Ranges like
// "1-2 min" yield the upper bound.
func parseDuration(q string) (int, bool) {
	m := durationRe.FindStringSubmatch(q)
	if m == nil {
		return 0, false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	if m[2] != "" {
		if upper, err := strconv.Atoi(m[2]); err == nil {
			n = upper
		}
	}

	if strings.HasPrefix(m[3], "min") {
		return n * 60, true
	}
	return n, true
}
