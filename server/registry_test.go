package server

import (
	"strings"
	"testing"

	"github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMintsDistinctIdentities(t *testing.T) {
	registry := NewPlayerRegistry()

	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 10; i++ {
		record, err := registry.Register(nil, "")
		require.NoError(t, err)
		assert.False(t, seen[record.ID], "identity minted twice")
		seen[record.ID] = true
	}

	assert.Equal(t, 10, registry.Count())
}

func TestRegisterWithKnownTokenIsIdempotent(t *testing.T) {
	registry := NewPlayerRegistry()

	first, err := registry.Register(nil, "cmdr")
	require.NoError(t, err)

	again, err := registry.Register(&first.Token, "")
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.Token, again.Token)
	assert.Equal(t, 1, registry.Count())
}

func TestRegisterWithUnknownTokenFails(t *testing.T) {
	registry := NewPlayerRegistry()

	bogus := uuid.NewV4()
	_, err := registry.Register(&bogus, "")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 0, registry.Count())
}

func TestRegisterGeneratesDefaultName(t *testing.T) {
	registry := NewPlayerRegistry()

	record, err := registry.Register(nil, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(record.Name, "Anonymous_coward#"), "got name %q", record.Name)

	named, err := registry.Register(nil, "cmdr")
	require.NoError(t, err)
	assert.Equal(t, "cmdr", named.Name)
}

func TestDeregisterRemovesBothDirections(t *testing.T) {
	registry := NewPlayerRegistry()

	record, err := registry.Register(nil, "")
	require.NoError(t, err)

	require.NoError(t, registry.Deregister(record.ID))

	_, err = registry.LookupToken(record.Token)
	assert.True(t, IsNotFound(err))

	_, ok := registry.Get(record.ID)
	assert.False(t, ok)

	err = registry.Deregister(record.ID)
	assert.True(t, IsNotFound(err))
}

func TestLookupToken(t *testing.T) {
	registry := NewPlayerRegistry()

	record, err := registry.Register(nil, "")
	require.NoError(t, err)

	playerID, err := registry.LookupToken(record.Token)
	require.NoError(t, err)
	assert.Equal(t, record.ID, playerID)

	_, err = registry.LookupToken(uuid.NewV4())
	assert.True(t, IsNotFound(err))
}
