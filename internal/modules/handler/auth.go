package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supabase-community/auth-go"
	"github.com/supabase-community/auth-go/types"

	"github.com/calabriando/api/internal/modules/serializer"
	"github.com/calabriando/api/internal/pkg/utils/tokens"
)

// AuthHandler proxies admin sign-in to the hosted auth service. The API
// never stores credentials; it only forwards them and returns the session
// tokens the auth service mints.
type AuthHandler struct {
	client auth.Client
}

func NewAuthHandler(client auth.Client) *AuthHandler {
	return &AuthHandler{client: client}
}

type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SessionResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Login godoc
//
//	@Summary	Sign in an admin with email and password
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		credentials	body		LoginReq	true	"Credentials"
//	@Success	200			{object}	serializer.Response{data=SessionResp}
//	@Failure	401			{object}	serializer.Response
//	@Router		/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	resp, err := h.client.Token(types.TokenRequest{
		GrantType: "password",
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("invalid credentials"))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: SessionResp{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}})
}

type RefreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh godoc
//
//	@Summary	Exchange a refresh token for a new session
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		token	body		RefreshReq	true	"Refresh token"
//	@Success	200		{object}	serializer.Response{data=SessionResp}
//	@Failure	401		{object}	serializer.Response
//	@Router		/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	resp, err := h.client.Token(types.TokenRequest{
		GrantType:    "refresh_token",
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("session expired"))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: SessionResp{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}})
}

// Logout godoc
//
//	@Summary	Revoke the current admin session
//	@Tags		auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response
//	@Router		/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := tokens.ParseToken(c.GetHeader("Authorization"), "Bearer ")
	if !ok || token == "" {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("missing token"))
		return
	}
	if err := h.client.WithToken(token).Logout(); err != nil {
		c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "logout failed", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "signed out"})
}
