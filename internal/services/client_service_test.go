package services

import (
	"testing"

	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientLifecycle(t *testing.T) {
	db := setupTestDB(t)
	service := NewClientService(db)

	client := &models.OAuthClient{ID: "kitchen-display", Secret: "hash", Name: "Kitchen display", UserID: 7}
	require.NoError(t, service.CreateClient(client))

	err := service.CreateClient(&models.OAuthClient{ID: "kitchen-display", Secret: "hash", UserID: 7})
	assert.ErrorIs(t, err, ErrConflict)

	clients, err := service.GetClientsByUserID(7)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Kitchen display", clients[0].Name)
	assert.Equal(t, "7", clients[0].GetUserID())

	found, err := service.GetClientByID("kitchen-display")
	require.NoError(t, err)
	assert.Equal(t, uint(7), found.UserID)

	assert.ErrorIs(t, service.DeleteClient("kitchen-display", 8), ErrNotFound)
	require.NoError(t, service.DeleteClient("kitchen-display", 7))

	_, err = service.GetClientByID("kitchen-display")
	assert.ErrorIs(t, err, ErrNotFound)
}
