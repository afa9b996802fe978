package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/warbler-social/warbler/internal/authz"
	"github.com/warbler-social/warbler/internal/middleware"
	"github.com/warbler-social/warbler/internal/services"
	"github.com/warbler-social/warbler/internal/session"
)

type UserHandler struct {
	userService  *services.UserService
	graphService *services.GraphService
	sessions     *session.Store
	jwtSecret    string
}

func NewUserHandler(userService *services.UserService, graphService *services.GraphService, sessions *session.Store, jwtSecret string) *UserHandler {
	return &UserHandler{
		userService:  userService,
		graphService: graphService,
		sessions:     sessions,
		jwtSecret:    jwtSecret,
	}
}

func (h *UserHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	sessionID, err := h.sessions.Login(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(sessionID, h.jwtSecret, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *UserHandler) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		if sessionID, err := middleware.ParseSessionID(strings.TrimPrefix(header, "Bearer "), h.jwtSecret); err == nil {
			_ = h.sessions.Logout(c.Request.Context(), sessionID)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	followers, err := h.graphService.FollowerCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	following, err := h.graphService.FollowingCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":            user,
		"follower_count":  followers,
		"following_count": following,
	})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	offset, limit := pagination(c)
	users, err := h.userService.List(c.Request.Context(), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": accessUnauthorized})
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), actor.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	offset, limit := pagination(c)
	users, err := h.userService.Search(c.Request.Context(), c.Query("q"), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": accessUnauthorized})
		return
	}

	if err := h.userService.DeleteAccount(c.Request.Context(), actor.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

func (h *UserHandler) Follow(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": accessUnauthorized})
		return
	}

	targetID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.graphService.Follow(c.Request.Context(), actor.ID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "followed"})
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": accessUnauthorized})
		return
	}

	targetID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.graphService.Unfollow(c.Request.Context(), actor.ID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "unfollowed"})
}

func (h *UserHandler) GetFollowers(c *gin.Context) {
	if respondDecision(c, authz.Decide(middleware.CurrentUserID(c), authz.ActionViewFollowers, 0)) {
		return
	}

	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	followers, err := h.graphService.Followers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": followers})
}

func (h *UserHandler) GetFollowing(c *gin.Context) {
	if respondDecision(c, authz.Decide(middleware.CurrentUserID(c), authz.ActionViewFollowing, 0)) {
		return
	}

	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	following, err := h.graphService.Following(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": following})
}

func (h *UserHandler) GetLikedMessages(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	messages, err := h.graphService.LikedBy(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
