package reconciler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterestSet(t *testing.T) {
	s := NewInterestSet("Rock", "Jazz", "Rock")

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("Rock"))
	assert.False(t, s.Has("Pop"))
	assert.Equal(t, []Interest{"Jazz", "Rock"}, s.Sorted())

	s.Add("Blues")
	assert.Equal(t, []Interest{"Blues", "Jazz", "Rock"}, s.Sorted())

	fromStrings := InterestSetFromStrings([]string{"Rock", "Jazz"})
	assert.Equal(t, NewInterestSet("Jazz", "Rock"), fromStrings)
}

func TestValidateInterest(t *testing.T) {
	tests := []struct {
		name     string
		interest Interest
		valid    bool
	}{
		{name: "plain", interest: "Rock", valid: true},
		{name: "with space", interest: "Drum and Bass", valid: true},
		{name: "unicode", interest: "Música", valid: true},
		{name: "empty", interest: "", valid: false},
		{name: "whitespace", interest: "   ", valid: false},
		{name: "newline", interest: "Rock\nPop", valid: false},
		{name: "nul byte", interest: "Rock\x00", valid: false},
		{name: "invalid utf8", interest: Interest([]byte{0xff, 0xfe}), valid: false},
		{name: "max length", interest: Interest(strings.Repeat("a", MaxInterestLength)), valid: true},
		{name: "too long", interest: Interest(strings.Repeat("a", MaxInterestLength+1)), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterest(tt.interest)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidInterest)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{name: "nil", err: nil, kind: ""},
		{name: "remote unavailable", err: fmt.Errorf("%w: 503", ErrRemoteUnavailable), kind: KindRemoteUnavailable},
		{name: "not found", err: ErrNotFound, kind: KindNotFound},
		{name: "invalid interest", err: ErrInvalidInterest, kind: KindInvalidInterest},
		{name: "timeout", err: ErrTimeout, kind: KindTimeout},
		{name: "deadline", err: context.DeadlineExceeded, kind: KindTimeout},
		{name: "canceled", err: context.Canceled, kind: KindTimeout},
		{
			name: "timeout wins over unavailable",
			err:  fmt.Errorf("%w: %w", context.DeadlineExceeded, ErrRemoteUnavailable),
			kind: KindTimeout,
		},
		{name: "unknown", err: errors.New("boom"), kind: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
		})
	}
}

func TestNotificationTemplate(t *testing.T) {
	n, err := DefaultTemplate().Render("Jazz")
	require.NoError(t, err)
	assert.Equal(t, "There's a new whistle in the Jazz genre.", n.AlertBody)
	assert.Equal(t, DefaultSoundName, n.SoundName)

	custom, err := ParseTemplate("{{.Interest}} just dropped", "")
	require.NoError(t, err)
	n, err = custom.Render("Metal")
	require.NoError(t, err)
	assert.Equal(t, "Metal just dropped", n.AlertBody)
	assert.Equal(t, DefaultSoundName, n.SoundName)

	_, err = ParseTemplate("{{.Interest", "")
	assert.Error(t, err)

	broken, err := ParseTemplate("{{.Genre}}", "")
	require.NoError(t, err)
	_, err = broken.Render("Rock")
	assert.Error(t, err)
}

func TestFailure(t *testing.T) {
	f := Failure{Operation: OpDelete, Target: "sub-1", Err: ErrNotFound}
	assert.Equal(t, KindNotFound, f.Kind())
	assert.Equal(t, "delete sub-1: subscription not found", f.String())

	list := Failure{Operation: OpList, Err: ErrRemoteUnavailable}
	assert.Equal(t, "list: remote unavailable", list.String())

	res := Result{Failures: []Failure{f, list}}
	assert.False(t, res.OK())
	assert.Equal(t, []Failure{list}, res.FailuresFor(OpList))
	assert.Empty(t, res.FailuresFor(OpCreate))
}
