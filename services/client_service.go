package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/repositories"
	"go.uber.org/zap"
)

// ClientInput carries the fields of a new client
type ClientInput struct {
	Name         string
	Email        string
	Phone        string
	BirthDate    time.Time
	Address      string
	Complement   *string
	Neighborhood string
	ZipCode      string
}

// ClientUpdate carries the fields to change on a client; nil fields are left as they are
type ClientUpdate struct {
	Name         *string
	Email        *string
	Phone        *string
	BirthDate    *time.Time
	Address      *string
	Complement   *string
	Neighborhood *string
	ZipCode      *string
}

// ClientService manages clients
type ClientService struct {
	store  repositories.Store
	logger *zap.Logger
}

var clientServiceInstance *ClientService

// NewClientService creates a client service over store
func NewClientService(store repositories.Store, logger *zap.Logger) *ClientService {
	return &ClientService{store: store, logger: logger}
}

// InitClientService initializes the global client service
func InitClientService(store repositories.Store, logger *zap.Logger) *ClientService {
	clientServiceInstance = NewClientService(store, logger)
	return clientServiceInstance
}

// GetClientService returns the initialized client service instance
func GetClientService() *ClientService {
	return clientServiceInstance
}

// CreateClient stores a new client. The email must not belong to any other client.
func (s *ClientService) CreateClient(ctx context.Context, input ClientInput) (*models.Client, error) {
	email := strings.TrimSpace(input.Email)
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	client := &models.Client{
		Name:         input.Name,
		Email:        email,
		Phone:        input.Phone,
		BirthDate:    input.BirthDate,
		Address:      input.Address,
		Complement:   input.Complement,
		Neighborhood: input.Neighborhood,
		ZipCode:      input.ZipCode,
	}
	if err := s.store.Clients().Create(ctx, client); err != nil {
		return nil, emailConflict(err, email)
	}

	s.logger.Info("Client created", zap.Uint("client_id", client.ID))
	return client, nil
}

// GetClient returns the client with its active orders loaded
func (s *ClientService) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	client, err := s.store.Clients().FindWithOrders(ctx, id)
	if err != nil {
		return nil, referenceError("client", id, err)
	}
	return client, nil
}

// ListClients returns one page of active clients and the total count
func (s *ClientService) ListClients(ctx context.Context, page repositories.Page) ([]models.Client, int64, error) {
	return s.store.Clients().List(ctx, page)
}

// UpdateClient applies the non-nil fields of update. A changed email is
// re-checked for uniqueness against every other client.
func (s *ClientService) UpdateClient(ctx context.Context, id uint, update ClientUpdate) (*models.Client, error) {
	client, err := s.store.Clients().FindByID(ctx, id)
	if err != nil {
		return nil, referenceError("client", id, err)
	}

	updates := map[string]interface{}{}
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if err := s.ensureEmailFree(ctx, email, id); err != nil {
			return nil, err
		}
		updates["email"] = email
	}
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Phone != nil {
		updates["phone"] = *update.Phone
	}
	if update.BirthDate != nil {
		updates["birth_date"] = *update.BirthDate
	}
	if update.Address != nil {
		updates["address"] = *update.Address
	}
	if update.Complement != nil {
		updates["complement"] = *update.Complement
	}
	if update.Neighborhood != nil {
		updates["neighborhood"] = *update.Neighborhood
	}
	if update.ZipCode != nil {
		updates["zip_code"] = *update.ZipCode
	}

	if err := s.store.Clients().Update(ctx, client, updates); err != nil {
		if email, ok := updates["email"].(string); ok {
			return nil, emailConflict(err, email)
		}
		return nil, err
	}

	updated, err := s.store.Clients().FindByID(ctx, id)
	if err != nil {
		return nil, referenceError("client", id, err)
	}
	return updated, nil
}

// DeleteClient soft-deletes a client. Its orders are kept.
func (s *ClientService) DeleteClient(ctx context.Context, id uint) error {
	if err := s.store.Clients().SoftDelete(ctx, id); err != nil {
		return referenceError("client", id, err)
	}
	s.logger.Info("Client deleted", zap.Uint("client_id", id))
	return nil
}

func (s *ClientService) ensureEmailFree(ctx context.Context, email string, excludeID uint) error {
	taken, err := s.store.Clients().EmailTaken(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return &ConflictError{Field: "email", Value: email}
	}
	return nil
}

// emailConflict reports a unique index violation on email as a conflict. It
// covers a concurrent write that slipped past ensureEmailFree.
func emailConflict(err error, email string) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return &ConflictError{Field: "email", Value: email}
	}
	return err
}
