package pgutils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsForeignKeyViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "driver error format",
			err:  errors.New(`ERROR: insert or update on table "favorites" violates foreign key constraint (SQLSTATE 23503)`),
			want: true,
		},
		{
			name: "code without SQLSTATE prefix",
			err:  errors.New("violation 23503"),
			want: true,
		},
		{
			name: "unique violation is not a foreign key violation",
			err:  errors.New("SQLSTATE 23505"),
			want: false,
		},
		{
			name: "generic error",
			err:  errors.New("connection refused"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsForeignKeyViolation(tt.err))
		})
	}
}
