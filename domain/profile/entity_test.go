package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActorProfile_ToDTO(t *testing.T) {
	gender := "female"
	ageRange := "30s"

	tests := []struct {
		name    string
		profile *ActorProfile
		want    ProfileDTO
	}{
		{
			name: "complete profile",
			profile: &ActorProfile{
				UserID:                   "user-123",
				Gender:                   &gender,
				AgeRange:                 &ageRange,
				PreferredGenres:          []string{"drama", "comedy"},
				OverdoneAlertSensitivity: 0.7,
				ProfileBiasEnabled:       true,
			},
			want: ProfileDTO{
				Gender:                   &gender,
				AgeRange:                 &ageRange,
				PreferredGenres:          []string{"drama", "comedy"},
				OverdoneAlertSensitivity: 0.7,
				ProfileBiasEnabled:       true,
			},
		},
		{
			name: "minimal profile normalizes nil genres",
			profile: &ActorProfile{
				UserID:             "user-456",
				ProfileBiasEnabled: false,
			},
			want: ProfileDTO{
				PreferredGenres:    []string{},
				ProfileBiasEnabled: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.profile.ToDTO()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProfileVocabulary(t *testing.T) {
	assert.True(t, ValidGenders["female"])
	assert.False(t, ValidGenders["other"])
	assert.True(t, ValidAgeRanges["60+"])
	assert.False(t, ValidAgeRanges["70s"])
}
