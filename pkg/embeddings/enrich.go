package embeddings

import (
	"fmt"
	"strings"
)

const (
	monologueSnippetLen = 800
	plotSnippetLen      = 500
	maxActors           = 5
)

// MonologueDoc carries the fields that make up a monologue's enriched text.
type MonologueDoc struct {
	Character  string
	WorkTitle  string
	Author     string
	Emotion    string
	Tone       string
	Gender     string
	AgeRange   string
	Themes     []string
	Difficulty string
	Text       string
}

// FilmTVDoc carries the fields that make up a film/TV reference's enriched text.
type FilmTVDoc struct {
	Title    string
	Year     int
	Type     string
	Genres   []string
	Director string
	Actors   []string
	Plot     string
}

// QueryFacets are the filter fields appended to a query's enriched text.
// Only non-empty fields contribute, so a bare query embeds as-is.
type QueryFacets struct {
	Emotion  string
	Tone     string
	Gender   string
	AgeRange string
	Themes   []string
	Category string
}

// EnrichMonologue builds the canonical enriched text for a monologue.
// Documents and queries are embedded from the same template so they share
// one semantic space; output is byte-identical for identical inputs.
func EnrichMonologue(d MonologueDoc) string {
	var b strings.Builder

	if d.Character != "" {
		b.WriteString(d.Character)
	} else {
		b.WriteString(d.WorkTitle)
	}
	if d.WorkTitle != "" && d.Character != "" {
		b.WriteString(" from ")
		b.WriteString(d.WorkTitle)
	}
	if d.Author != "" {
		b.WriteString(" by ")
		b.WriteString(d.Author)
	}
	b.WriteString(".")

	writeFacet(&b, "Emotion", d.Emotion)
	writeFacet(&b, "Tone", d.Tone)
	writeFacet(&b, "Gender", d.Gender)
	writeFacet(&b, "Age", d.AgeRange)
	if len(d.Themes) > 0 {
		writeFacet(&b, "Themes", strings.Join(d.Themes, ", "))
	}
	writeFacet(&b, "Difficulty", d.Difficulty)

	if snippet := truncateRunes(d.Text, monologueSnippetLen); snippet != "" {
		b.WriteString(" ")
		b.WriteString(snippet)
	}

	return b.String()
}

// EnrichFilmTV builds the canonical enriched text for a film/TV reference.
func EnrichFilmTV(d FilmTVDoc) string {
	var b strings.Builder

	b.WriteString(d.Title)
	if d.Year > 0 {
		fmt.Fprintf(&b, " (%d)", d.Year)
	}
	b.WriteString(".")

	writeFacet(&b, "Type", d.Type)
	if len(d.Genres) > 0 {
		writeFacet(&b, "Genre", strings.Join(d.Genres, ", "))
	}
	writeFacet(&b, "Director", d.Director)
	actors := d.Actors
	if len(actors) > maxActors {
		actors = actors[:maxActors]
	}
	if len(actors) > 0 {
		writeFacet(&b, "Actors", strings.Join(actors, ", "))
	}

	if snippet := truncateRunes(d.Plot, plotSnippetLen); snippet != "" {
		b.WriteString(" ")
		b.WriteString(snippet)
	}

	return b.String()
}

// EnrichQuery builds the enriched text for a search query. Only facets the
// extractor or parser actually produced are appended.
func EnrichQuery(query string, f QueryFacets) string {
	var b strings.Builder

	b.WriteString(query)
	b.WriteString(".")

	writeFacet(&b, "Emotion", f.Emotion)
	writeFacet(&b, "Tone", f.Tone)
	writeFacet(&b, "Gender", f.Gender)
	writeFacet(&b, "Age", f.AgeRange)
	if len(f.Themes) > 0 {
		writeFacet(&b, "Themes", strings.Join(f.Themes, ", "))
	}
	writeFacet(&b, "Category", f.Category)

	return b.String()
}

func writeFacet(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(" ")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString(".")
}

func truncateRunes(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
