package handler

import (
	"net/http"
	"net/url"

	"anoa.com/eduainexus/internal/middleware"
	"anoa.com/eduainexus/internal/modules/user/service"
	"anoa.com/eduainexus/pkg/apperror"
	"anoa.com/eduainexus/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const stateCookie = "oauth_state"

type AuthHandler struct {
	authService service.AuthService
	frontendURL string
}

// NewAuthHandler redirects back to frontendURL after sign-in, or answers with JSON when it is empty.
func NewAuthHandler(authService service.AuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{authService: authService, frontendURL: frontendURL}
}

func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := uuid.NewString()
	authURL, err := h.authService.GoogleLogin(state)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 600, "/api/auth", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code not found"})
		return
	}

	expected, err := c.Cookie(stateCookie)
	if err != nil || expected == "" || expected != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}
	c.SetCookie(stateCookie, "", -1, "/api/auth", "", c.Request.TLS != nil, true)

	res, err := h.authService.GoogleCallback(c.Request.Context(), code)
	if err != nil {
		if h.frontendURL != "" && apperror.MapErrorToStatus(err) != http.StatusServiceUnavailable {
			c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?error="+url.QueryEscape(err.Error()))
			return
		}
		response.ResponseError(c, err)
		return
	}

	if h.frontendURL == "" {
		c.JSON(http.StatusOK, res)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/auth/google/callback?token="+url.QueryEscape(res.AccessToken))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.Claims(c)); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
