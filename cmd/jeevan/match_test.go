package main

import (
	"testing"

	"jeevan/internal/matching"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchScope(t *testing.T) {
	scope, err := matchScope("", "")
	require.NoError(t, err)
	assert.Equal(t, matching.Scope{}, scope)

	scope, err = matchScope("recipient-1", "")
	require.NoError(t, err)
	assert.Equal(t, matching.Scope{RecipientID: "recipient-1"}, scope)

	scope, err = matchScope("", "donor-1")
	require.NoError(t, err)
	assert.Equal(t, matching.Scope{DonorID: "donor-1"}, scope)

	_, err = matchScope("recipient-1", "donor-1")
	assert.Error(t, err)
}
