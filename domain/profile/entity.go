package profile

import (
	"time"

	"github.com/uptrace/bun"
)

// ActorProfile is the searching user's structured self-description. It
// drives profile bias in the rank merger and the overdone filter.
type ActorProfile struct {
	bun.BaseModel `bun:"table:stage.actor_profiles,alias:ap"`

	UserID                   string    `bun:"user_id,pk,type:uuid"`
	Gender                   *string   `bun:"gender"`
	AgeRange                 *string   `bun:"age_range"`
	ExperienceLevel          *string   `bun:"experience_level"`
	PreferredGenres          []string  `bun:"preferred_genres,array"`
	OverdoneAlertSensitivity float64   `bun:"overdone_alert_sensitivity"`
	ProfileBiasEnabled       bool      `bun:"profile_bias_enabled"`
	CreatedAt                time.Time `bun:"created_at"`
	UpdatedAt                time.Time `bun:"updated_at"`
}

// ProfileDTO is the response DTO for the profile endpoint
type ProfileDTO struct {
	Gender                   *string  `json:"gender,omitempty"`
	AgeRange                 *string  `json:"ageRange,omitempty"`
	ExperienceLevel          *string  `json:"experienceLevel,omitempty"`
	PreferredGenres          []string `json:"preferredGenres"`
	OverdoneAlertSensitivity float64  `json:"overdoneAlertSensitivity"`
	ProfileBiasEnabled       bool     `json:"profileBiasEnabled"`
}

// UpdateProfileRequest is the request body for updating the profile
type UpdateProfileRequest struct {
	Gender                   *string   `json:"gender,omitempty"`
	AgeRange                 *string   `json:"ageRange,omitempty"`
	ExperienceLevel          *string   `json:"experienceLevel,omitempty"`
	PreferredGenres          *[]string `json:"preferredGenres,omitempty"`
	OverdoneAlertSensitivity *float64  `json:"overdoneAlertSensitivity,omitempty"`
	ProfileBiasEnabled       *bool     `json:"profileBiasEnabled,omitempty"`
}

// ToDTO converts an ActorProfile entity to ProfileDTO
func (p *ActorProfile) ToDTO() ProfileDTO {
	genres := p.PreferredGenres
	if genres == nil {
		genres = []string{}
	}
	return ProfileDTO{
		Gender:                   p.Gender,
		AgeRange:                 p.AgeRange,
		ExperienceLevel:          p.ExperienceLevel,
		PreferredGenres:          genres,
		OverdoneAlertSensitivity: p.OverdoneAlertSensitivity,
		ProfileBiasEnabled:       p.ProfileBiasEnabled,
	}
}

// ValidGenders and ValidAgeRanges are the accepted profile vocabulary.
var (
	ValidGenders   = map[string]bool{"male": true, "female": true, "any": true}
	ValidAgeRanges = map[string]bool{
		"teens": true, "20s": true, "30s": true, "40s": true,
		"50s": true, "60+": true, "any": true,
	}
	ValidExperienceLevels = map[string]bool{
		"beginner": true, "intermediate": true, "advanced": true,
		"professional": true,
	}
)

// DifficultyFor maps an experience level onto the monologue difficulty
// vocabulary. Professionals and advanced actors both land on advanced
// material.
func DifficultyFor(experience string) string {
	switch experience {
	case "beginner":
		return "beginner"
	case "intermediate":
		return "intermediate"
	case "advanced", "professional":
		return "advanced"
	default:
		return ""
	}
}
