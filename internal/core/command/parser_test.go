package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/chatpoll/internal/core/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestParseBasicCommand(t *testing.T) {
	args := []string{"question=Lunch?", "choice=Pizza", "choice=Sushi"}

	opts, err := Parse(args, 0, testNow)
	require.NoError(t, err)

	assert.Equal(t, "Lunch?", opts.Question)
	assert.Equal(t, []string{"Pizza", "Sushi"}, opts.Choices)
	assert.False(t, opts.IsConfidential)
	assert.True(t, opts.ShowResults)
	assert.False(t, opts.SingleChoice)
	assert.Nil(t, opts.FinishAt)
}

func TestParseFlagsAndDefaults(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, opts domain.CreatePollOptions)
	}{
		{
			name: "double dash prefix",
			args: []string{"--question=q", "--choice=a", "--choice=b", "--single_choice"},
			check: func(t *testing.T, opts domain.CreatePollOptions) {
				assert.True(t, opts.SingleChoice)
			},
		},
		{
			name: "confidential visibility",
			args: []string{"question=q", "choice=a", "choice=b", "visibility=confidential"},
			check: func(t *testing.T, opts domain.CreatePollOptions) {
				assert.True(t, opts.IsConfidential)
			},
		},
		{
			name: "bare visibility defaults to open",
			args: []string{"question=q", "choice=a", "choice=b", "visibility"},
			check: func(t *testing.T, opts domain.CreatePollOptions) {
				assert.False(t, opts.IsConfidential)
			},
		},
		{
			name: "hidden results",
			args: []string{"question=q", "choice=a", "choice=b", "show_results=finished"},
			check: func(t *testing.T, opts domain.CreatePollOptions) {
				assert.False(t, opts.ShowResults)
			},
		},
		{
			name: "numeric single choice",
			args: []string{"question=q", "choice=a", "choice=b", "single_choice=1"},
			check: func(t *testing.T, opts domain.CreatePollOptions) {
				assert.True(t, opts.SingleChoice)
			},
		},
		{
			name: "zero single choice",
			args: []string{"question=q", "choice=a", "choice=b", "single_choice=0"},
			check: func(t *testing.T, opts domain.CreatePollOptions) {
				assert.False(t, opts.SingleChoice)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := Parse(tc.args, 0, testNow)
			require.NoError(t, err)
			tc.check(t, opts)
		})
	}
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse([]string{"question=q", "choice=a", "choice=b", "color=red"}, 0, testNow)
	require.ErrorIs(t, err, domain.ErrInvalidOptions)
	assert.Contains(t, err.Error(), "color is not supported")
}

func TestParseValidationFailures(t *testing.T) {
	_, err := Parse([]string{"choice=a", "choice=b"}, 0, testNow)
	require.ErrorIs(t, err, domain.ErrInvalidOptions)

	_, err = Parse([]string{"question=q", "choice=a"}, 0, testNow)
	require.ErrorIs(t, err, domain.ErrInvalidOptions)

	_, err = Parse([]string{"question=q", "choice=a", "choice=b", "finish_at=2026-03-01T11:00:00Z"}, 0, testNow)
	require.ErrorIs(t, err, domain.ErrInvalidOptions)
}

func TestParseFinishAt(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		utcOffset float64
		want      time.Time
	}{
		{
			name:  "explicit zulu offset",
			value: "2026-03-01T15:00:00Z",
			want:  time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC),
		},
		{
			name:  "explicit numeric offset",
			value: "2026-03-01T15:00:00+02:00",
			want:  time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC),
		},
		{
			name:      "no offset uses sender zone",
			value:     "2026-03-01T15:00:00",
			utcOffset: 2,
			want:      time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC),
		},
		{
			name:      "no offset negative sender zone",
			value:     "2026-03-01T15:00:00",
			utcOffset: -3,
			want:      time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args := []string{"question=q", "choice=a", "choice=b", "finish_at=" + tc.value}
			opts, err := Parse(args, tc.utcOffset, testNow)
			require.NoError(t, err)
			require.NotNil(t, opts.FinishAt)
			assert.True(t, tc.want.Equal(*opts.FinishAt), "got %s, want %s", opts.FinishAt, tc.want)
		})
	}
}

func TestParseFinishAtMalformed(t *testing.T) {
	_, err := Parse([]string{"question=q", "choice=a", "choice=b", "finish_at=tomorrow"}, 0, testNow)
	require.ErrorIs(t, err, domain.ErrInvalidOptions)
	assert.Contains(t, err.Error(), "cannot parse finish date")
}

func TestSplit(t *testing.T) {
	assert.Equal(t,
		[]string{"question=Lunch today?", "choice=Pizza place", "choice=Sushi"},
		Split(`question="Lunch today?" choice="Pizza place" choice=Sushi`),
	)
	assert.Empty(t, Split("   "))
}
