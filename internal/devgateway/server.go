// Package devgateway is an in-memory stand-in for the AuraFlow server:
// JWT-authenticated REST endpoints for the durable operations and the
// socket endpoint the realtime client connects to. It backs the SDK's
// integration tests and `cmd/devserver` for local development; nothing it
// stores survives a restart.
package devgateway

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/auth"
)

// Server holds the in-memory state and the socket hub.
type Server struct {
	log *zerolog.Logger
	jwt auth.Config
	hub *hub

	mu          sync.Mutex
	usersByName map[string]*userRecord
	usersByID   map[int64]*userRecord
	communities []communityRecord
	channels    []channelRecord
	nextID      int64
}

type userRecord struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash []byte
}

type communityRecord struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"owner_id"`
}

type channelRecord struct {
	ID          int64  `json:"id"`
	CommunityID int64  `json:"community_id"`
	Name        string `json:"name"`
	ChannelType string `json:"channel_type"`
}

// New constructs an empty gateway. Seed users before serving.
func New(jwtSecret string, logger *zerolog.Logger) *Server {
	return &Server{
		log: logger,
		jwt: auth.Config{
			Secret: []byte(jwtSecret),
			Issuer: "auraflow-dev",
			TTL:    24 * time.Hour,
		},
		hub:         newHub(),
		usersByName: make(map[string]*userRecord),
		usersByID:   make(map[int64]*userRecord),
	}
}

// Seed registers a user account with a bcrypt-hashed password.
func (s *Server) Seed(username, password, displayName string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	user := &userRecord{
		ID:           s.nextID,
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: hash,
	}
	s.usersByName[username] = user
	s.usersByID[user.ID] = user
	return nil
}

// MintToken issues a token for a seeded user, bypassing the login endpoint.
// Tests use it to connect sockets without a REST round trip.
func (s *Server) MintToken(username string) (string, error) {
	s.mu.Lock()
	user, ok := s.usersByName[username]
	s.mu.Unlock()
	if !ok {
		return "", errUnknownUser
	}
	return auth.Mint(s.jwt, user.ID, user.Username)
}

// Router builds the gin handler: REST surface plus the /ws socket endpoint.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/api/auth/login", s.handleLogin)
	r.GET("/ws", s.handleSocket)

	api := r.Group("/api", s.requireAuth)
	{
		api.GET("/communities", s.handleListCommunities)
		api.POST("/communities", s.handleCreateCommunity)
		api.GET("/communities/:id/channels", s.handleListChannels)
		api.POST("/communities/:id/channels", s.handleCreateChannel)
		api.POST("/channels/:id/messages", s.handleSendMessage)
		api.POST("/direct-messages", s.handleSendDirectMessage)
		api.POST("/friends/requests", s.handleFriendRequest)
	}
	return r
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "invalid login payload")
		return
	}

	s.mu.Lock()
	user, ok := s.usersByName[req.Username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)) != nil {
		apiError(c, http.StatusUnauthorized, "invalid_credentials", "unknown user or wrong password")
		return
	}

	token, err := auth.Mint(s.jwt, user.ID, user.Username)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "token_error", "failed to mint token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":           user.ID,
			"username":     user.Username,
			"display_name": user.DisplayName,
		},
	})
}

func (s *Server) requireAuth(c *gin.Context) {
	claims, err := auth.Verify(s.jwt, auth.StripBearer(c.GetHeader("Authorization")))
	if err != nil {
		apiError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
		c.Abort()
		return
	}
	c.Set("claims", claims)
	c.Next()
}

func claimsFrom(c *gin.Context) *auth.Claims {
	v, _ := c.Get("claims")
	claims, _ := v.(*auth.Claims)
	return claims
}

func (s *Server) handleListCommunities(c *gin.Context) {
	s.mu.Lock()
	out := make([]communityRecord, len(s.communities))
	copy(out, s.communities)
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateCommunity(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		apiError(c, http.StatusBadRequest, "bad_request", "name is required")
		return
	}

	claims := claimsFrom(c)
	s.mu.Lock()
	s.nextID++
	community := communityRecord{ID: s.nextID, Name: req.Name, OwnerID: claims.UserID}
	s.communities = append(s.communities, community)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, community)
}

func (s *Server) handleListChannels(c *gin.Context) {
	communityID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "invalid community id")
		return
	}

	s.mu.Lock()
	out := make([]channelRecord, 0)
	for _, ch := range s.channels {
		if ch.CommunityID == communityID {
			out = append(out, ch)
		}
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateChannel(c *gin.Context) {
	communityID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "invalid community id")
		return
	}
	var req struct {
		Name        string `json:"name"`
		ChannelType string `json:"channel_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		apiError(c, http.StatusBadRequest, "bad_request", "name is required")
		return
	}
	if req.ChannelType == "" {
		req.ChannelType = "text"
	}

	s.mu.Lock()
	s.nextID++
	channel := channelRecord{
		ID:          s.nextID,
		CommunityID: communityID,
		Name:        req.Name,
		ChannelType: req.ChannelType,
	}
	s.channels = append(s.channels, channel)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, channel)
}

// handleSendMessage persists a channel message. Notifying room members is
// the client's job via the new_message socket event; the REST path is
// durability only.
func (s *Server) handleSendMessage(c *gin.Context) {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "invalid channel id")
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		apiError(c, http.StatusBadRequest, "bad_request", "content is required")
		return
	}

	claims := claimsFrom(c)
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{
		"id":         id,
		"channel_id": channelID,
		"sender_id":  claims.UserID,
		"content":    req.Content,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSendDirectMessage(c *gin.Context) {
	var req struct {
		ReceiverID int64  `json:"receiver_id"`
		Content    string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" || req.ReceiverID == 0 {
		apiError(c, http.StatusBadRequest, "bad_request", "receiver_id and content are required")
		return
	}

	claims := claimsFrom(c)
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{
		"id":          id,
		"sender_id":   claims.UserID,
		"receiver_id": req.ReceiverID,
		"content":     req.Content,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleFriendRequest(c *gin.Context) {
	var req struct {
		ReceiverID int64 `json:"receiver_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ReceiverID == 0 {
		apiError(c, http.StatusBadRequest, "bad_request", "receiver_id is required")
		return
	}

	claims := claimsFrom(c)
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{
		"id":          id,
		"sender_id":   claims.UserID,
		"receiver_id": req.ReceiverID,
	})
}

func apiError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "msg": msg}})
}
