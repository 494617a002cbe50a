package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SortsByCreationTime(t *testing.T) {
	a := New()
	time.Sleep(2 * time.Millisecond)
	b := New()
	assert.Less(t, a, b)
}

func TestTime_RoundTripsMillisecond(t *testing.T) {
	before := time.Now().UTC().Truncate(time.Millisecond)
	ts, err := Time(New())
	require.NoError(t, err)
	assert.False(t, ts.Before(before))
}

func TestTime_RejectsGarbage(t *testing.T) {
	_, err := Time("not-a-ulid")
	assert.Error(t, err)
}
