package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"partsportal/internal/odata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockForwarder struct {
	mock.Mock
}

func (m *MockForwarder) Forward(ctx context.Context, token, method, path string, body []byte, prefer string) (*odata.ForwardResponse, error) {
	args := m.Called(ctx, token, method, path, body, prefer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*odata.ForwardResponse), args.Error(1)
}

func TestCreateInventory_ForwardsVerbatim(t *testing.T) {
	ctx := context.Background()
	backend := new(MockForwarder)
	body := []byte(`{"item_number":"X-1","m_description":"Bracket"}`)
	expected := &odata.ForwardResponse{StatusCode: http.StatusCreated, Location: "m_Inventory('1')", Body: []byte(`{"id":"1"}`)}

	backend.On("Forward", ctx, "tok", http.MethodPost, "m_Inventory", body, "return=representation").Return(expected, nil).Once()

	resp, err := NewInventoryService(backend).CreateInventory(ctx, "tok", body, "return=representation")
	require.NoError(t, err)
	assert.Equal(t, expected, resp)
	backend.AssertExpectations(t)
}

func TestUpdateSpareValue(t *testing.T) {
	ctx := context.Background()
	body := []byte(`{"m_spare_value":4}`)

	t.Run("Patches the keyed instance", func(t *testing.T) {
		backend := new(MockForwarder)
		expected := &odata.ForwardResponse{StatusCode: http.StatusNoContent}
		backend.On("Forward", ctx, "tok", http.MethodPatch, "m_Instance('ABC123')", body, "").Return(expected, nil).Once()

		resp, err := NewInventoryService(backend).UpdateSpareValue(ctx, "tok", "ABC123", body, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		backend.AssertExpectations(t)
	})

	t.Run("Rejects ids that would break the key", func(t *testing.T) {
		backend := new(MockForwarder)
		for _, id := range []string{"", "a')", "a b", "x/y"} {
			_, err := NewInventoryService(backend).UpdateSpareValue(ctx, "tok", id, body, "")
			assert.True(t, errors.Is(err, ErrInvalidInstanceID), id)
		}
		backend.AssertNotCalled(t, "Forward")
	})
}
