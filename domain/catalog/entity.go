package catalog

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Work is a play or film/TV title monologues belong to
type Work struct {
	bun.BaseModel `bun:"table:stage.works,alias:w"`

	ID              string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Title           string    `bun:"title"`
	Author          string    `bun:"author"`
	Year            *int      `bun:"year"`
	Category        string    `bun:"category"`
	CopyrightStatus string    `bun:"copyright_status"`
	SourceURL       *string   `bun:"source_url"`
	IMDBID          *string   `bun:"imdb_id"`
	CreatedAt       time.Time `bun:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at"`
}

// Monologue is a single character speech extracted from a Work. The
// embedding column is written exclusively by the ingestion/backfill
// pipeline via raw SQL; the core only reads it inside the dense retriever.
type Monologue struct {
	bun.BaseModel `bun:"table:stage.monologues,alias:m"`

	ID                       string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	WorkID                   string    `bun:"work_id,type:uuid"`
	CharacterName            string    `bun:"character_name"`
	Text                     string    `bun:"text"`
	WordCount                int       `bun:"word_count"`
	EstimatedDurationSeconds int       `bun:"estimated_duration_seconds"`
	PrimaryEmotion           *string   `bun:"primary_emotion"`
	Themes                   []string  `bun:"themes,array"`
	Tone                     *string   `bun:"tone"`
	DifficultyLevel          *string   `bun:"difficulty_level"`
	CharacterGender          string    `bun:"character_gender"`
	CharacterAgeRange        string    `bun:"character_age_range"`
	Act                      *int      `bun:"act"`
	Scene                    *int      `bun:"scene"`
	OverdoneScore            float64   `bun:"overdone_score"`
	FavoriteCount            int       `bun:"favorite_count"`
	ViewCount                int       `bun:"view_count"`
	SearchTags               []string  `bun:"search_tags,array"`
	CreatedAt                time.Time `bun:"created_at"`
	UpdatedAt                time.Time `bun:"updated_at"`

	Work *Work `bun:"rel:belongs-to,join:work_id=id"`
}

// FilmTVReference is a film or TV title used for search parity with
// monologues.
type FilmTVReference struct {
	bun.BaseModel `bun:"table:stage.film_tv_references,alias:f"`

	ID         string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Title      string    `bun:"title"`
	Year       *int      `bun:"year"`
	Type       string    `bun:"type"`
	Genres     []string  `bun:"genres,array"`
	Plot       *string   `bun:"plot"`
	Director   *string   `bun:"director"`
	Actors     []string  `bun:"actors,array"`
	IMDBRating *float64  `bun:"imdb_rating"`
	PosterURL  *string   `bun:"poster_url"`
	IMDBID     string    `bun:"imdb_id"`
	CreatedAt  time.Time `bun:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at"`
}

// wordsPerMinute is the assumed performance pace for duration estimates
const wordsPerMinute = 150

// CountWords returns the whitespace-delimited word count of a text
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// EstimatedDuration computes performance seconds from a word count:
// floor(word_count/150*60).
func EstimatedDuration(wordCount int) int {
	return wordCount * 60 / wordsPerMinute
}

// SetText updates the text and recomputes the derived fields, keeping the
// duration invariant intact on every text change.
func (m *Monologue) SetText(text string) {
	m.Text = text
	m.WordCount = CountWords(text)
	m.EstimatedDurationSeconds = EstimatedDuration(m.WordCount)
}
