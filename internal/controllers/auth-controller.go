package controllers

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/auth"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// SessionResponse is returned after a successful Telegram login
type SessionResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

type AuthController struct {
	verifier    *auth.InitDataVerifier
	userService services.UserService
	sessions    *auth.SessionIssuer
}

func NewAuthController(verifier *auth.InitDataVerifier, userService services.UserService, sessions *auth.SessionIssuer) *AuthController {
	return &AuthController{
		verifier:    verifier,
		userService: userService,
		sessions:    sessions,
	}
}

// TelegramLogin godoc
// @Summary Exchange Telegram init data for a session token
// @Description Verifies the signed init data of the mini app, creates the user on first login and returns a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body object{init_data=string} true "Raw Telegram.WebApp.initData"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Router /api/v1/auth/telegram [post]
func (ac *AuthController) TelegramLogin(c *gin.Context) {
	var req struct {
		InitData string `json:"init_data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "init_data is required")
		return
	}

	tgUser, err := ac.verifier.Verify(req.InitData)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := ac.userService.ResolveTelegramUser(c.Request.Context(), tgUser)
	if err != nil {
		respondError(c, err)
		return
	}

	token, expiresAt, err := ac.sessions.Issue(user)
	if err != nil {
		respondError(c, models.NewInfrastructureError(models.ErrInternalServer, err))
		return
	}

	log.WithFields(log.Fields{"user_id": user.ID, "telegram_id": user.TelegramID}).Info("Telegram session issued")
	c.JSON(http.StatusOK, SessionResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ac.sessions.TTL().Seconds()),
		ExpiresAt:   expiresAt,
		User:        user,
	})
}

// Me godoc
// @Summary Current user
// @Description Returns the authenticated user's profile, role and points
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/me [get]
func (ac *AuthController) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	fresh, err := ac.userService.GetUserByID(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fresh)
}
