package favorites

import (
	"time"

	"github.com/uptrace/bun"
)

// Favorite marks one monologue or film/TV reference per user. Exactly one
// of MonologueID and ReferenceID is set.
type Favorite struct {
	bun.BaseModel `bun:"table:stage.favorites,alias:fav"`

	ID          string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID      string    `bun:"user_id,type:uuid"`
	MonologueID *string   `bun:"monologue_id,type:uuid"`
	ReferenceID *string   `bun:"reference_id,type:uuid"`
	CreatedAt   time.Time `bun:"created_at"`
}

// FavoriteDTO is the list payload
type FavoriteDTO struct {
	MonologueID *string   `json:"monologueId,omitempty"`
	ReferenceID *string   `json:"referenceId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToDTO converts a Favorite to its DTO
func (f *Favorite) ToDTO() FavoriteDTO {
	return FavoriteDTO{
		MonologueID: f.MonologueID,
		ReferenceID: f.ReferenceID,
		CreatedAt:   f.CreatedAt,
	}
}
