package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"catalogfeed/internal/logger"
	"catalogfeed/internal/models"
	"catalogfeed/internal/stores"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// productRequest keeps an omitted "enabled" apart from an explicit false.
type productRequest struct {
	models.Product
	Enabled *bool `json:"enabled"`
}

type ProductHandler struct {
	db       *gorm.DB
	notifier DeleteNotifier
	logger   *logger.Logger
}

func NewProductHandler(db *gorm.DB, notifier DeleteNotifier, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		db:       db,
		notifier: notifier,
		logger:   logger,
	}
}

func (h *ProductHandler) List(c *gin.Context) {
	var products []models.Product

	// Pagination
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	// Filters
	productType := c.Query("type")
	store := c.Query("store")
	search := c.Query("search")

	query := h.db.WithContext(c.Request.Context()).Model(&models.Product{})

	if productType != "" {
		query = query.Where("type = ?", strings.ToUpper(productType))
	}

	if store != "" {
		query = query.Where("(store_id IS NULL OR store_id = ?)", store)
	}

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(sku) LIKE ?)", pattern, pattern)
	}

	var total int64
	query.Count(&total)

	if err := query.Order("created_at, id").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		h.logger.Error("Failed to fetch products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": products,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var product models.Product
	if err := h.db.WithContext(c.Request.Context()).Preload("Parent").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product := req.Product
	product.ID = ""
	enabled := req.Enabled == nil || *req.Enabled
	product.Enabled = true
	if err := validateProduct(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Parent").Create(&product).Error; err != nil {
			return err
		}
		// A false Enabled is dropped in favour of the column default on insert.
		if !enabled {
			product.Enabled = false
			return tx.Model(&product).Update("enabled", false).Error
		}
		return nil
	})
	if err != nil {
		h.logger.Error("Failed to create product: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": product})
}

func (h *ProductHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var product models.Product
	if err := h.db.WithContext(c.Request.Context()).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	req := productRequest{Product: product}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product = req.Product
	product.ID = id
	if req.Enabled != nil {
		product.Enabled = *req.Enabled
	}
	if err := validateProduct(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Omit("Parent").Save(&product).Error; err != nil {
		h.logger.Error("Failed to update product %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// Delete removes the product and then tells the store's catalogue. A failed
// notification is logged; the product stays deleted.
func (h *ProductHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	res := h.db.WithContext(c.Request.Context()).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if h.notifier != nil {
		scope := stores.Scope(c.Query("store"))
		if _, err := h.notifier.ProductDeleted(c.Request.Context(), scope, id); err != nil {
			h.logger.Warn("Product %s deleted but catalog was not notified: %v", id, err)
		}
	}

	c.Status(http.StatusNoContent)
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.SKU) == "" {
		return errors.New("sku is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("title is required")
	}
	switch p.Type {
	case "":
		p.Type = models.ProductTypeSimple
	case models.ProductTypeSimple, models.ProductTypeConfigurable:
	default:
		return errors.New("type must be SIMPLE or CONFIGURABLE")
	}
	if p.Type == models.ProductTypeConfigurable && p.ParentID != nil {
		return errors.New("a configurable product cannot have a parent")
	}
	if p.Price < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}
