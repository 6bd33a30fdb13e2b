package services

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"partsportal/internal/odata"
)

// Forwarder relays create and update requests to the backend
type Forwarder interface {
	Forward(ctx context.Context, token, method, path string, body []byte, prefer string) (*odata.ForwardResponse, error)
}

// ErrInvalidInstanceID is returned for instance ids that cannot be embedded
// in a backend key
var ErrInvalidInstanceID = fmt.Errorf("invalid instance id")

var instanceIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidInstanceID reports whether id is a plain backend item id
func ValidInstanceID(id string) bool {
	return instanceIDPattern.MatchString(id)
}

type InventoryService interface {
	CreateInventory(ctx context.Context, token string, body []byte, prefer string) (*odata.ForwardResponse, error)
	UpdateSpareValue(ctx context.Context, token, instanceID string, body []byte, prefer string) (*odata.ForwardResponse, error)
}

type inventoryService struct {
	backend           Forwarder
	inventoryEntity   string
	instanceEntitySet string
}

func NewInventoryService(backend Forwarder) InventoryService {
	return &inventoryService{
		backend:           backend,
		inventoryEntity:   "m_Inventory",
		instanceEntitySet: "m_Instance",
	}
}

// CreateInventory posts a new inventory item to the backend
func (s *inventoryService) CreateInventory(ctx context.Context, token string, body []byte, prefer string) (*odata.ForwardResponse, error) {
	return s.backend.Forward(ctx, token, http.MethodPost, s.inventoryEntity, body, prefer)
}

// UpdateSpareValue patches one instance with the caller's payload
func (s *inventoryService) UpdateSpareValue(ctx context.Context, token, instanceID string, body []byte, prefer string) (*odata.ForwardResponse, error) {
	if !ValidInstanceID(instanceID) {
		return nil, ErrInvalidInstanceID
	}
	path := fmt.Sprintf("%s('%s')", s.instanceEntitySet, instanceID)
	return s.backend.Forward(ctx, token, http.MethodPatch, path, body, prefer)
}
