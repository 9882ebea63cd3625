package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// IDKey is the gin context key holding the authenticated user's id.
const IDKey = "user_id"

// CurrentID returns the id stored by the authentication middleware.
func CurrentID(ctx *gin.Context) (int, bool) {
	id, ok := ctx.Get(IDKey)
	if !ok {
		return 0, false
	}
	userID, ok := id.(int)
	return userID, ok
}

type ControllerImpl struct {
	service     Service
	requireAuth gin.HandlerFunc
}

func NewControllerImpl(service Service, requireAuth gin.HandlerFunc) *ControllerImpl {
	return &ControllerImpl{service: service, requireAuth: requireAuth}
}

func (c *ControllerImpl) GetProfile(ctx *gin.Context) {
	id, _ := CurrentID(ctx)
	profile, err := c.service.GetProfile(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, profile)
}

func (c *ControllerImpl) UpdateProfile(ctx *gin.Context) {
	var req UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	id, _ := CurrentID(ctx)
	profile, err := c.service.UpdateProfile(ctx.Request.Context(), id, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, profile)
}

func (c *ControllerImpl) ChangePassword(ctx *gin.Context) {
	var req ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	id, _ := CurrentID(ctx)
	if err := c.service.ChangePassword(ctx.Request.Context(), id, req); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (c *ControllerImpl) UpdateAPIKeys(ctx *gin.Context) {
	var req UpdateAPIKeysRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	id, _ := CurrentID(ctx)
	if err := c.service.UpdateAPIKeys(ctx.Request.Context(), id, req); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "api keys updated"})
}

func (c *ControllerImpl) GetAPIKeys(ctx *gin.Context) {
	id, _ := CurrentID(ctx)
	keys, err := c.service.GetAPIKeys(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, keys)
}

func (c *ControllerImpl) GetStats(ctx *gin.Context) {
	id, _ := CurrentID(ctx)
	stats, err := c.service.GetStats(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

func (c *ControllerImpl) DeleteAccount(ctx *gin.Context) {
	id, _ := CurrentID(ctx)
	if err := c.service.DeleteAccount(ctx.Request.Context(), id); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

func writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrWrongPassword):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (c *ControllerImpl) RegisterRoutes(router *gin.Engine) {
	me := router.Group("/api/users/me", c.requireAuth)
	me.GET("", c.GetProfile)
	me.PATCH("", c.UpdateProfile)
	me.DELETE("", c.DeleteAccount)
	me.POST("/password", c.ChangePassword)
	me.PUT("/api-keys", c.UpdateAPIKeys)
	me.GET("/api-keys", c.GetAPIKeys)
	me.GET("/stats", c.GetStats)
}
