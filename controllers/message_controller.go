package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campus-ride/api-go/models"
	"github.com/campus-ride/api-go/utils"
)

type MessageController struct {
	DB *gorm.DB
}

func NewMessageController(db *gorm.DB) *MessageController {
	return &MessageController{DB: db}
}

// conversationPair normalizes a user pair so (a,b) and (b,a) hit one row.
func conversationPair(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}

func (mc *MessageController) getOrCreateConversation(userID, otherID uint) (*models.Conversation, error) {
	a, b := conversationPair(userID, otherID)

	var conversation models.Conversation
	err := mc.DB.Where("user_a_id = ? AND user_b_id = ?", a, b).First(&conversation).Error
	if err == nil {
		return &conversation, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	conversation = models.Conversation{UserAID: a, UserBID: b}
	if err := mc.DB.Create(&conversation).Error; err != nil {
		// Lost a race with a concurrent first message; fetch the winner's row
		if fetchErr := mc.DB.Where("user_a_id = ? AND user_b_id = ?", a, b).First(&conversation).Error; fetchErr != nil {
			return nil, err
		}
	}
	return &conversation, nil
}

func (mc *MessageController) SendMessage(c *gin.Context) {
	user := utils.GetUser(c)

	var input struct {
		RecipientID uint   `json:"recipientId" binding:"required"`
		Content     string `json:"content" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	if input.RecipientID == user.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot message yourself", "success": false})
		return
	}

	var recipient models.User
	if err := mc.DB.First(&recipient, input.RecipientID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found", "success": false})
		return
	}

	conversation, err := mc.getOrCreateConversation(user.UserID, input.RecipientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open conversation", "success": false})
		return
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       user.UserID,
		Content:        input.Content,
	}

	if err := mc.DB.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message", "success": false})
		return
	}

	now := time.Now()
	mc.DB.Model(conversation).Update("last_message_at", now)

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message})
}

func (mc *MessageController) ListConversations(c *gin.Context) {
	user := utils.GetUser(c)

	var conversations []models.Conversation
	if err := mc.DB.Preload("UserA").Preload("UserB").
		Where("user_a_id = ? OR user_b_id = ?", user.UserID, user.UserID).
		Order("last_message_at DESC NULLS LAST").
		Find(&conversations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "conversations": conversations})
}

func (mc *MessageController) ListMessages(c *gin.Context) {
	user := utils.GetUser(c)

	var query struct {
		Limit  int `form:"limit,default=50" binding:"min=1,max=200"`
		Offset int `form:"offset,default=0" binding:"min=0"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var conversation models.Conversation
	if err := mc.DB.First(&conversation, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found", "success": false})
		return
	}

	if conversation.UserAID != user.UserID && conversation.UserBID != user.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "success": false})
		return
	}

	var messages []models.Message
	if err := mc.DB.Where("conversation_id = ?", conversation.ID).
		Order("created_at DESC").
		Offset(query.Offset).Limit(query.Limit).
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "messages": messages})
}

// MarkRead flags all messages the other party sent in a conversation.
func (mc *MessageController) MarkRead(c *gin.Context) {
	user := utils.GetUser(c)

	var conversation models.Conversation
	if err := mc.DB.First(&conversation, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found", "success": false})
		return
	}

	if conversation.UserAID != user.UserID && conversation.UserBID != user.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "success": false})
		return
	}

	if err := mc.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversation.ID, user.UserID, false).
		Update("is_read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark messages read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Messages marked read"})
}

func (mc *MessageController) DeleteMessage(c *gin.Context) {
	user := utils.GetUser(c)

	var message models.Message
	if err := mc.DB.First(&message, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found", "success": false})
		return
	}

	if message.SenderID != user.UserID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "success": false})
		return
	}

	if err := mc.DB.Delete(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message deleted"})
}

// CreateSystemMessage publishes an announcement. Admin only. Omitting userId
// broadcasts to everyone.
func (mc *MessageController) CreateSystemMessage(c *gin.Context) {
	var input struct {
		UserID   *uint  `json:"userId"`
		Title    string `json:"title" binding:"required"`
		Content  string `json:"content" binding:"required"`
		Category string `json:"category"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	message := models.SystemMessage{
		UserID:   input.UserID,
		Title:    input.Title,
		Content:  input.Content,
		Category: input.Category,
	}

	if err := mc.DB.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create system message", "success": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message})
}

// ListSystemMessages returns broadcasts plus the caller's direct system
// messages, newest first, with per-message read state.
func (mc *MessageController) ListSystemMessages(c *gin.Context) {
	user := utils.GetUser(c)

	var query struct {
		Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
		Offset int `form:"offset,default=0" binding:"min=0"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var messages []models.SystemMessage
	if err := mc.DB.Where("user_id IS NULL OR user_id = ?", user.UserID).
		Order("created_at DESC").
		Offset(query.Offset).Limit(query.Limit).
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch system messages"})
		return
	}

	var readIDs []uint
	mc.DB.Model(&models.SystemMessageRead{}).
		Where("user_id = ?", user.UserID).
		Pluck("system_message_id", &readIDs)

	readSet := make(map[uint]bool, len(readIDs))
	for _, id := range readIDs {
		readSet[id] = true
	}

	type systemMessageView struct {
		models.SystemMessage
		IsRead bool `json:"isRead"`
	}

	views := make([]systemMessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, systemMessageView{SystemMessage: m, IsRead: readSet[m.ID]})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "messages": views})
}

func (mc *MessageController) MarkSystemMessageRead(c *gin.Context) {
	user := utils.GetUser(c)

	var message models.SystemMessage
	if err := mc.DB.First(&message, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "System message not found", "success": false})
		return
	}

	read := models.SystemMessageRead{
		SystemMessageID: message.ID,
		UserID:          user.UserID,
	}

	// Unique index makes a duplicate mark a no-op
	if err := mc.DB.Create(&read).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Already read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Marked read"})
}

func (mc *MessageController) DeleteSystemMessage(c *gin.Context) {
	var message models.SystemMessage
	if err := mc.DB.First(&message, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "System message not found", "success": false})
		return
	}

	if err := mc.DB.Delete(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete system message", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "System message deleted"})
}
