package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticNames struct {
	names []string
	err   error
	calls int
}

func (s *staticNames) AllNames(ctx context.Context) ([]string, error) {
	s.calls++
	return s.names, s.err
}

func TestSuggest(t *testing.T) {
	src := &staticNames{names: []string{
		"Pikachu", "Raichu", "Pichu", "Charizard ex", "Rare Candy",
	}}
	svc, err := NewSuggestService(src)
	require.NoError(t, err)
	require.NoError(t, svc.Refresh(context.Background()))

	hits := svc.Suggest("pika", 5)
	require.NotEmpty(t, hits)
	assert.Equal(t, "Pikachu", hits[0])

	// All three -chu names fuzzily match "chu".
	hits = svc.Suggest("chu", 10)
	assert.ElementsMatch(t, []string{"Pikachu", "Raichu", "Pichu"}, hits)
}

func TestSuggestLimit(t *testing.T) {
	src := &staticNames{names: []string{"Pikachu", "Raichu", "Pichu"}}
	svc, err := NewSuggestService(src)
	require.NoError(t, err)
	require.NoError(t, svc.Refresh(context.Background()))

	hits := svc.Suggest("chu", 1)
	assert.Len(t, hits, 1)

	// Zero and negative limits fall back to the default cap.
	assert.Len(t, svc.Suggest("chu", 0), 3)
	assert.Len(t, svc.Suggest("chu", -4), 3)
}

func TestSuggestEmptyQuery(t *testing.T) {
	svc, err := NewSuggestService(&staticNames{})
	require.NoError(t, err)
	assert.Nil(t, svc.Suggest("   ", 5))
}

func TestSuggestCachesQueries(t *testing.T) {
	src := &staticNames{names: []string{"Pikachu"}}
	svc, err := NewSuggestService(src)
	require.NoError(t, err)
	require.NoError(t, svc.Refresh(context.Background()))

	first := svc.Suggest("Pikachu", 5)
	second := svc.Suggest("PIKACHU", 5)
	assert.Equal(t, first, second)
}

func TestRefreshFailureKeepsOldSnapshot(t *testing.T) {
	src := &staticNames{names: []string{"Pikachu"}}
	svc, err := NewSuggestService(src)
	require.NoError(t, err)
	require.NoError(t, svc.Refresh(context.Background()))

	src.err = errors.New("db down")
	require.Error(t, svc.Refresh(context.Background()))
	assert.Equal(t, []string{"Pikachu"}, svc.Suggest("Pikachu", 5))
}
