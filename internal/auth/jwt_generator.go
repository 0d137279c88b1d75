package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// ClientTokenGenerator mints the access tokens handed to integration clients.
// A token acts as the user who registered the client: it carries that user's
// id and the role currently stored for them, so the Authenticate middleware
// treats it like a session token.
type ClientTokenGenerator struct {
	key    []byte
	method jwt.SigningMethod
	db     *gorm.DB
}

// NewClientTokenGenerator creates a generator signing with key
func NewClientTokenGenerator(key []byte, method jwt.SigningMethod, db *gorm.DB) *ClientTokenGenerator {
	return &ClientTokenGenerator{key: key, method: method, db: db}
}

// Token implements oauth2.AccessGenerate. The client credentials grant never
// issues refresh tokens, so only the access token is returned.
func (g *ClientTokenGenerator) Token(ctx context.Context, data *oauth2.GenerateBasic, isGenRefresh bool) (string, string, error) {
	owner, err := g.owner(ctx, data)
	if err != nil {
		return "", "", err
	}

	info := data.TokenInfo
	issuedAt := info.GetAccessCreateAt()
	claims := jwt.MapClaims{
		"aud":  data.Client.GetID(),
		"uid":  strconv.FormatUint(uint64(owner.ID), 10),
		"role": string(owner.Role),
		"iat":  issuedAt.Unix(),
		"exp":  issuedAt.Add(info.GetAccessExpiresIn()).Unix(),
	}
	if scope := info.GetScope(); scope != "" {
		claims["scope"] = scope
	}

	access, err := jwt.NewWithClaims(g.method, claims).SignedString(g.key)
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}
	return access, "", nil
}

// owner loads the user the token acts for: the grant's user when it names one,
// otherwise the user that registered the client
func (g *ClientTokenGenerator) owner(ctx context.Context, data *oauth2.GenerateBasic) (*models.User, error) {
	raw := data.UserID
	if raw == "" {
		raw = data.Client.GetUserID()
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("client %s has no owning user", data.Client.GetID())
	}

	var user models.User
	if err := g.db.WithContext(ctx).Select("id", "role").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("owner %d of client %s no longer exists", id, data.Client.GetID())
		}
		return nil, fmt.Errorf("load client owner: %w", err)
	}

	// A row with an unknown role never yields admin rights
	if !user.Role.Valid() {
		user.Role = models.RoleCustomer
	}
	return &user, nil
}
