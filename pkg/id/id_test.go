package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePublicID(t *testing.T) {
	p := NewPublicID()
	got, err := ParsePublicID(p.String())
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = ParsePublicID("12; DROP TABLE persons")
	assert.ErrorIs(t, err, ErrInvalidPublicID)
}

func TestParsePublicIDNormalizesCase(t *testing.T) {
	got, err := ParsePublicID("6F9619FF-8B86-D011-B42D-00C04FC964FF")
	require.NoError(t, err)
	assert.Equal(t, PublicID("6f9619ff-8b86-d011-b42d-00c04fc964ff"), got)
}
