package services

import (
	"context"
	"testing"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePlayer(t *testing.T) {
	ctx := context.Background()
	svc := NewPlayerService(repositories.NewPlayerRepository(repositories.NewMemoryDocumentStore()), nil)

	p, err := svc.CreatePlayer(ctx, CreatePlayerInput{FirstName: "garry", LastName: "kasparov", BirthDate: "1963-04-13"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Garry", p.FirstName)
	assert.Equal(t, "KASPAROV", p.LastName)
	assert.Equal(t, "1963-04-13", p.BirthDate)

	dflt, err := svc.CreatePlayer(ctx, CreatePlayerInput{ID: "hou", FirstName: "YIFAN", LastName: "Hou"})
	require.NoError(t, err)
	assert.Equal(t, "hou", dflt.ID)
	assert.Equal(t, "Yifan", dflt.FirstName)
	assert.Equal(t, models.DefaultBirthDate, dflt.BirthDate)

	_, err = svc.CreatePlayer(ctx, CreatePlayerInput{ID: "hou", FirstName: "a", LastName: "b"})
	assert.ErrorIs(t, err, ErrDuplicateEntry)

	tests := []struct {
		name  string
		input CreatePlayerInput
	}{
		{"missing first name", CreatePlayerInput{LastName: "x"}},
		{"missing last name", CreatePlayerInput{FirstName: "x"}},
		{"bad birthdate", CreatePlayerInput{FirstName: "x", LastName: "y", BirthDate: "13/04/1963"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePlayer(ctx, tt.input)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}

	all, err := svc.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	ok, err := svc.Exists(ctx, "hou")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.Exists(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.GetPlayer(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Élodie", capitalize("éLODIE"))
	assert.Equal(t, "A", capitalize("a"))
	assert.Equal(t, "", capitalize(""))
}
