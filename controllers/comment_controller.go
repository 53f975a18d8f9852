package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campus-ride/api-go/models"
	"github.com/campus-ride/api-go/utils"
)

type CommentController struct {
	DB *gorm.DB
}

func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{DB: db}
}

func (cc *CommentController) CreateComment(c *gin.Context) {
	user := utils.GetUser(c)

	var input struct {
		Content string `json:"content" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	var activity models.Activity
	if err := cc.DB.First(&activity, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found", "success": false})
		return
	}

	comment := models.Comment{
		Content:    input.Content,
		UserID:     user.UserID,
		ActivityID: activity.ID,
	}

	if err := cc.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment", "success": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "comment": comment})
}

func (cc *CommentController) ListComments(c *gin.Context) {
	var query struct {
		Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
		Offset int `form:"offset,default=0" binding:"min=0"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var activity models.Activity
	if err := cc.DB.First(&activity, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found", "success": false})
		return
	}

	var comments []models.Comment
	if err := cc.DB.Preload("User").
		Where("activity_id = ?", activity.ID).
		Order("created_at DESC").
		Offset(query.Offset).Limit(query.Limit).
		Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "comments": comments})
}

func (cc *CommentController) DeleteComment(c *gin.Context) {
	user := utils.GetUser(c)

	var comment models.Comment
	if err := cc.DB.First(&comment, c.Param("commentId")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found", "success": false})
		return
	}

	if comment.UserID != user.UserID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "success": false})
		return
	}

	if err := cc.DB.Delete(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Comment deleted"})
}
