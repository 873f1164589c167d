package catalog

// MonologueDTO is the public monologue payload shared by the detail
// endpoint and search results.
type MonologueDTO struct {
	ID                       string   `json:"id"`
	WorkTitle                string   `json:"workTitle"`
	Author                   string   `json:"author"`
	Category                 string   `json:"category"`
	CharacterName            string   `json:"characterName"`
	Text                     string   `json:"text"`
	WordCount                int      `json:"wordCount"`
	EstimatedDurationSeconds int      `json:"estimatedDurationSeconds"`
	PrimaryEmotion           *string  `json:"primaryEmotion,omitempty"`
	Themes                   []string `json:"themes"`
	Tone                     *string  `json:"tone,omitempty"`
	DifficultyLevel          *string  `json:"difficultyLevel,omitempty"`
	CharacterGender          string   `json:"characterGender"`
	CharacterAgeRange        string   `json:"characterAgeRange"`
	Act                      *int     `json:"act,omitempty"`
	Scene                    *int     `json:"scene,omitempty"`
	OverdoneScore            float64  `json:"overdoneScore"`
	FavoriteCount            int      `json:"favoriteCount"`
	ViewCount                int      `json:"viewCount"`
}

// FilmTVDTO is the public film/TV reference payload
type FilmTVDTO struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Year       *int     `json:"year,omitempty"`
	Type       string   `json:"type"`
	Genres     []string `json:"genres"`
	Plot       *string  `json:"plot,omitempty"`
	Director   *string  `json:"director,omitempty"`
	Actors     []string `json:"actors"`
	IMDBRating *float64 `json:"imdbRating,omitempty"`
	PosterURL  *string  `json:"posterUrl,omitempty"`
	IMDBID     string   `json:"imdbId"`
}

// ToDTO converts a Monologue (with its Work loaded) to a DTO
func (m *Monologue) ToDTO() MonologueDTO {
	dto := MonologueDTO{
		ID:                       m.ID,
		CharacterName:            m.CharacterName,
		Text:                     m.Text,
		WordCount:                m.WordCount,
		EstimatedDurationSeconds: m.EstimatedDurationSeconds,
		PrimaryEmotion:           m.PrimaryEmotion,
		Themes:                   m.Themes,
		Tone:                     m.Tone,
		DifficultyLevel:          m.DifficultyLevel,
		CharacterGender:          m.CharacterGender,
		CharacterAgeRange:        m.CharacterAgeRange,
		Act:                      m.Act,
		Scene:                    m.Scene,
		OverdoneScore:            m.OverdoneScore,
		FavoriteCount:            m.FavoriteCount,
		ViewCount:                m.ViewCount,
	}
	if dto.Themes == nil {
		dto.Themes = []string{}
	}
	if m.Work != nil {
		dto.WorkTitle = m.Work.Title
		dto.Author = m.Work.Author
		dto.Category = m.Work.Category
	}
	return dto
}

// ToDTO converts a FilmTVReference to a DTO
func (f *FilmTVReference) ToDTO() FilmTVDTO {
	dto := FilmTVDTO{
		ID:         f.ID,
		Title:      f.Title,
		Year:       f.Year,
		Type:       f.Type,
		Genres:     f.Genres,
		Plot:       f.Plot,
		Director:   f.Director,
		Actors:     f.Actors,
		IMDBRating: f.IMDBRating,
		PosterURL:  f.PosterURL,
		IMDBID:     f.IMDBID,
	}
	if dto.Genres == nil {
		dto.Genres = []string{}
	}
	if dto.Actors == nil {
		dto.Actors = []string{}
	}
	return dto
}
