package services

import (
	"context"
	"strings"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ClientRegistration is what an admin submits to register an integration client
type ClientRegistration struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Scopes string `json:"scopes"`
}

type ClientService interface {
	// RegisterClient stores a new client owned by ownerID and returns the plain
	// secret, which is never retrievable again
	RegisterClient(ctx context.Context, ownerID uint, reg ClientRegistration) (*models.OAuthClient, string, error)
	GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error)
	GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error)
	DeleteClient(ctx context.Context, clientID string, userID uint) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) RegisterClient(ctx context.Context, ownerID uint, reg ClientRegistration) (*models.OAuthClient, string, error) {
	if strings.TrimSpace(reg.Name) == "" {
		return nil, "", models.NewValidationError(models.ErrBadRequest, "name is required")
	}

	secret := uuid.New().String()
	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", models.NewInfrastructureError(models.ErrInternalServer, err)
	}

	client := &models.OAuthClient{
		ID:         uuid.New().String(),
		Secret:     string(hashedSecret),
		Name:       strings.TrimSpace(reg.Name),
		Domain:     reg.Domain,
		Scopes:     reg.Scopes,
		GrantTypes: "client_credentials",
		UserID:     ownerID,
	}
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, "", persistenceError(err)
	}
	return client, secret, nil
}

func (s *clientService) GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error) {
	clients := []models.OAuthClient{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&clients).Error; err != nil {
		return nil, persistenceError(err)
	}
	return clients, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, notFoundOr(err, models.ErrClientNotFound, "client not found")
	}
	return &client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, clientID string, userID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.OAuthClient{})
	if result.Error != nil {
		return persistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError(models.ErrClientNotFound, "client not found")
	}
	return nil
}
