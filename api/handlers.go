package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"filelinkbot/services"
	"filelinkbot/utils"
)

func (s *Server) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "Bot is running"})
}

// healthCheck بررسی سلامت سرور
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

// webhook feeds one telegram update to the bot. Telegram retries anything
// but a 200, so processing errors are reported in the body only.
func (s *Server) webhook(c *gin.Context) {
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		s.logger.Warn("malformed update", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if err := s.deps.Updates.HandleUpdate(c.Request.Context(), update); err != nil {
		s.logger.Error("handle update", zap.Int("update_id", update.UpdateID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// login handles admin panel login
func (s *Server) login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token, err := s.deps.Auth.Login(req.Username, req.Password)
	if errors.Is(err, services.ErrBadCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	if err != nil {
		s.logger.Error("login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"message": "Login successful",
	})
}

// getAdminState returns the admin's ingest mode and pending files.
func (s *Server) getAdminState(c *gin.Context) {
	st, err := s.deps.State.Status(c.Request.Context(), s.cfg.AdminID)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mode":          st.Mode,
		"pending_files": st.PendingFiles,
		"pending_count": len(st.PendingFiles),
	})
}

func (s *Server) getStats(c *gin.Context) {
	stats, err := s.deps.Stats.Get(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) getBatch(c *gin.Context) {
	batch, err := s.deps.Batches.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch_id":   batch.BatchID,
		"file_ids":   batch.FileIDs,
		"caption":    batch.Caption,
		"views":      batch.Views,
		"created_at": batch.CreatedAt,
	})
}

func (s *Server) listChannels(c *gin.Context) {
	channels, err := s.deps.Channels.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(channels))
	for _, ch := range channels {
		out = append(out, gin.H{
			"channel_id":  ch.ChannelID,
			"invite_link": ch.InviteLink,
		})
	}
	c.JSON(http.StatusOK, gin.H{"channels": out, "total": len(out)})
}

func (s *Server) addChannel(c *gin.Context) {
	type AddChannelRequest struct {
		ChannelID  int64  `json:"channel_id" binding:"required"`
		InviteLink string `json:"invite_link" binding:"required"`
	}

	var req AddChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := s.deps.Channels.Add(c.Request.Context(), req.ChannelID, req.InviteLink); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"channel_id": req.ChannelID, "invite_link": req.InviteLink})
}

func (s *Server) removeChannel(c *gin.Context) {
	channelID, err := utils.ParseChatID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.deps.Channels.Remove(c.Request.Context(), channelID); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// fail maps service errors to HTTP responses.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrInvalidChannel):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrStoreUnavailable):
		s.logger.Error("state store unavailable", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
