package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/auth"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

// Context keys set by Authenticate
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextUser     = "user"
	ContextAuthType = "auth_type"
)

// Credential transports accepted for Telegram init data
const (
	initDataScheme = "tma "
	initDataHeader = "X-Telegram-Init-Data"
	initDataQuery  = "telegram_init_data"
)

// UserResolver loads the user behind a verified credential
type UserResolver interface {
	ResolveTelegramUser(ctx context.Context, tg *auth.TelegramUser) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// Authenticate accepts either Telegram init data (`Authorization: tma <data>`,
// the X-Telegram-Init-Data header or the telegram_init_data query parameter)
// or a Bearer JWT signed with jwtSecret. Session tokens and OAuth2 client
// tokens are both bearer JWTs carrying uid and role claims.
func Authenticate(jwtSecret []byte, verifier *auth.InitDataVerifier, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			user     *models.User
			authType string
			err      error
		)

		authHeader := c.GetHeader("Authorization")
		switch {
		case strings.HasPrefix(authHeader, "Bearer "):
			authType = "jwt"
			user, err = authenticateBearer(c, strings.TrimPrefix(authHeader, "Bearer "), jwtSecret, users)
		case initDataFrom(c) != "":
			authType = "telegram"
			user, err = authenticateInitData(c, initDataFrom(c), verifier, users)
		case authHeader != "":
			err = models.NewAuthenticationError(models.ErrAuthRequired,
				"Authorization header must use the Bearer or tma scheme")
		default:
			err = models.NewAuthenticationError(models.ErrAuthRequired,
				"missing credentials: send Telegram init data or a Bearer token")
		}

		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, user.Role)
		c.Set(ContextUser, user)
		c.Set(ContextAuthType, authType)
		c.Next()
	}
}

// CurrentUser returns the user stored by Authenticate
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

func initDataFrom(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, initDataScheme) {
		return strings.TrimPrefix(header, initDataScheme)
	}
	if header := c.GetHeader(initDataHeader); header != "" {
		return header
	}
	return c.Query(initDataQuery)
}

func authenticateInitData(c *gin.Context, initData string, verifier *auth.InitDataVerifier, users UserResolver) (*models.User, error) {
	tgUser, err := verifier.Verify(initData)
	if err != nil {
		return nil, err
	}
	return users.ResolveTelegramUser(c.Request.Context(), tgUser)
}

func authenticateBearer(c *gin.Context, tokenString string, jwtSecret []byte, users UserResolver) (*models.User, error) {
	if tokenString == "" {
		return nil, models.NewAuthenticationError(models.ErrInvalidToken, "Bearer token is empty")
	}

	claims, err := parseAndValidateJWT(tokenString, jwtSecret)
	if err != nil {
		return nil, models.NewAuthenticationError(models.ErrInvalidToken, err.Error())
	}

	userID, err := extractUserID(claims)
	if err != nil {
		return nil, models.NewAuthenticationError(models.ErrInvalidToken, err.Error())
	}
	if _, err := extractRole(claims); err != nil {
		return nil, models.NewAuthenticationError(models.ErrInvalidToken, err.Error())
	}

	if aud, ok := claims["aud"].(string); ok && aud != "" {
		c.Set("clientID", aud)
	}
	if scope, ok := claims["scope"].(string); ok && scope != "" {
		c.Set("scopes", scope)
	}

	// The stored role wins over the claim so demotions apply to live tokens
	user, err := users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return nil, models.NewAuthenticationError(models.ErrInvalidToken, "token subject no longer exists")
		}
		return nil, err
	}
	return user, nil
}

func abortWithError(c *gin.Context, err error) {
	appErr := models.AsAppError(err)
	if appErr.Kind == models.KindInfrastructure {
		log.WithError(appErr.Err).WithField("path", c.FullPath()).Error("Authentication failed")
	}
	c.AbortWithStatusJSON(appErr.Kind.HTTPStatus(), appErr.APIError())
}

// parseJWTToken validates and parses a JWT token using HMAC signing method
// Returns the claims if valid, error otherwise
func parseJWTToken(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Reject tokens whose header switches the algorithm family
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v. Expected HMAC", token.Header["alg"])
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims format")
	}

	return claims, nil
}

// parseAndValidateJWT parses the JWT and checks its time claims
func parseAndValidateJWT(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	claims, err := parseJWTToken(tokenString, jwtSecret)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return nil, fmt.Errorf("token has no exp claim")
	}
	if exp.Before(now) {
		return nil, fmt.Errorf("token has expired")
	}

	nbf, err := claims.GetNotBefore()
	if err != nil {
		return nil, fmt.Errorf("invalid nbf claim: %w", err)
	}
	if nbf != nil && nbf.After(now) {
		return nil, fmt.Errorf("token not yet valid")
	}

	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("invalid iat claim: %w", err)
	}
	if iat != nil && iat.After(now) {
		return nil, fmt.Errorf("token issued in the future")
	}

	return claims, nil
}

// extractUserID reads the uid claim. Both string and numeric encodings are accepted.
func extractUserID(claims jwt.MapClaims) (uint, error) {
	if uid, ok := claims["uid"].(string); ok && uid != "" {
		parsedID, err := strconv.ParseUint(uid, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid uid claim format: must be a numeric string, got: %s", uid)
		}
		if parsedID == 0 {
			return 0, fmt.Errorf("invalid user identifier: cannot be zero")
		}
		return uint(parsedID), nil
	}

	// JSON numbers are decoded as float64
	if uid, ok := claims["uid"].(float64); ok {
		if uid <= 0 {
			return 0, fmt.Errorf("invalid uid claim: must be positive, got: %f", uid)
		}
		return uint(uid), nil
	}

	return 0, fmt.Errorf("token missing required 'uid' claim. This token is not valid for this API")
}

// extractRole reads the role claim. Tokens without an explicit known role are rejected.
func extractRole(claims jwt.MapClaims) (models.Role, error) {
	raw, ok := claims["role"].(string)
	if !ok || raw == "" {
		return "", fmt.Errorf("token missing required 'role' claim")
	}

	role := models.Role(raw)
	if !role.Valid() {
		return "", fmt.Errorf("invalid role '%s'. Allowed roles: customer, admin", raw)
	}
	return role, nil
}
