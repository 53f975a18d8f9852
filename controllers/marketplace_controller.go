package controllers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/campus-ride/api-go/models"
	"github.com/campus-ride/api-go/utils"
)

type MarketplaceController struct {
	DB *gorm.DB
}

func NewMarketplaceController(db *gorm.DB) *MarketplaceController {
	return &MarketplaceController{DB: db}
}

type CreateProductRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition" binding:"omitempty,oneof=new like_new used"`
	Price       float64  `json:"price" binding:"required,min=0"`
	Images      []string `json:"images"`
}

func (mc *MarketplaceController) CreateProduct(c *gin.Context) {
	user := utils.GetUser(c)

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	product := models.Product{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Condition:   req.Condition,
		Price:       req.Price,
		Images:      pq.StringArray(req.Images),
		Status:      models.ProductStatusAvailable,
		SellerID:    user.UserID,
	}

	if err := mc.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product", "success": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "product": product})
}

func (mc *MarketplaceController) ListProducts(c *gin.Context) {
	var query struct {
		Search   string `form:"search"`
		Category string `form:"category"`
		Status   string `form:"status" binding:"omitempty,oneof=available reserved sold"`
		Page     int    `form:"page,default=1" binding:"min=1"`
		PageSize int    `form:"pageSize,default=10" binding:"min=1,max=50"`
	}

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := mc.DB.Model(&models.Product{})

	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		db = db.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if query.Category != "" {
		db = db.Where("category = ?", query.Category)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	} else {
		db = db.Where("status = ?", models.ProductStatusAvailable)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
		return
	}

	var products []models.Product
	offset := (query.Page - 1) * query.PageSize
	if err := db.Preload("Seller").Order("created_at DESC").Offset(offset).Limit(query.PageSize).Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    products,
		Pagination: &PaginationMeta{
			CurrentPage: query.Page,
			PageSize:    query.PageSize,
			TotalItems:  count,
			TotalPages:  int(math.Ceil(float64(count) / float64(query.PageSize))),
		},
	})
}

func (mc *MarketplaceController) GetProduct(c *gin.Context) {
	var product models.Product
	if err := mc.DB.Preload("Seller").First(&product, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found", "success": false})
		return
	}

	// Best effort view counter
	mc.DB.Model(&product).UpdateColumn("view_count", gorm.Expr("view_count + 1"))

	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

func (mc *MarketplaceController) UpdateProduct(c *gin.Context) {
	user := utils.GetUser(c)

	var product models.Product
	if err := mc.DB.First(&product, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found", "success": false})
		return
	}

	if product.SellerID != user.UserID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "success": false})
		return
	}

	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Category    string   `json:"category"`
		Condition   string   `json:"condition" binding:"omitempty,oneof=new like_new used"`
		Price       *float64 `json:"price" binding:"omitempty,min=0"`
		Images      []string `json:"images"`
		Status      string   `json:"status" binding:"omitempty,oneof=available reserved sold"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Condition != "" {
		updates["condition"] = req.Condition
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}

	if err := mc.DB.Model(&product).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

func (mc *MarketplaceController) DeleteProduct(c *gin.Context) {
	user := utils.GetUser(c)

	var product models.Product
	if err := mc.DB.First(&product, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found", "success": false})
		return
	}

	if product.SellerID != user.UserID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "success": false})
		return
	}

	if err := mc.DB.Delete(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted"})
}

func (mc *MarketplaceController) GetMyProducts(c *gin.Context) {
	user := utils.GetUser(c)

	var products []models.Product
	if err := mc.DB.Where("seller_id = ?", user.UserID).Order("created_at DESC").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}
