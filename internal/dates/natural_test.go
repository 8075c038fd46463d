package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	// Wednesday
	now := time.Date(2024, time.December, 11, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-12-31", want: "2024-12-31"},
		{in: "  ", want: ""},
		{in: "tomorrow", want: "2024-12-12"},
		{in: "in 2 weeks", want: "2024-12-25"},
		{in: "zzz qqq", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
