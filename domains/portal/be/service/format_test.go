package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatDurationLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		seconds float64
		want    string
	}{
		{name: "zero", seconds: 0, want: "0:00"},
		{name: "under a minute", seconds: 59, want: "0:59"},
		{name: "exact minute", seconds: 60, want: "1:00"},
		{name: "minutes and seconds", seconds: 125, want: "2:05"},
		{name: "fraction truncates", seconds: 125.9, want: "2:05"},
		{name: "negative clamps", seconds: -30, want: "0:00"},
		{name: "over an hour stays minutes", seconds: 3725, want: "62:05"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, FormatDurationLabel(tc.seconds))
		})
	}
}

func TestFormatEpisodeLabel(t *testing.T) {
	t.Parallel()

	require.Equal(t, "S01 • E04", FormatEpisodeLabel(1, 4))
	require.Equal(t, "S02 • E11", FormatEpisodeLabel(2, 11))
	require.Equal(t, "S10 • E100", FormatEpisodeLabel(10, 100))
}
