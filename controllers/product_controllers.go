package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mufufarm/farmstore-api/models"
	"github.com/mufufarm/farmstore-api/services"
	"github.com/mufufarm/farmstore-api/utils"
)

type ProductController struct {
	DB    *gorm.DB
	Files *services.FileStore
}

func NewProductController(db *gorm.DB, files *services.FileStore) *ProductController {
	return &ProductController{DB: db, Files: files}
}

// GetAllProducts -> public catalog listing.
func (pc *ProductController) GetAllProducts(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 {
		limit = 100
	}

	query := pc.DB.Model(&models.Product{})
	if c.Query("available_only") == "true" {
		query = query.Where("available = ?", true)
	}

	var products []models.Product
	if err := query.Offset(skip).Limit(limit).Find(&products).Error; err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of products", products)
}

// GetProductByID
func (pc *ProductController) GetProductByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("product_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid product id"))
		return
	}

	var product models.Product
	if err := pc.DB.First(&product, id).Error; err != nil {
		utils.RespondServiceError(c, utils.NewNotFoundError("product", id))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product detail", product)
}

// CreateProduct -> admin creates a product, optionally with an image upload.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	c.Request.ParseMultipartForm(services.MaxUploadSize)

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid price"))
		return
	}

	name := c.PostForm("name")
	if name == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	product := models.Product{
		Name:        name,
		Description: c.PostForm("description"),
		Price:       price,
		Unit:        c.DefaultPostForm("unit", "kg"),
		Icon:        c.DefaultPostForm("icon", "🐟"),
		Available:   parseBool(c.DefaultPostForm("available", "true")),
	}

	var imageURL string
	if fh, ferr := c.FormFile("image"); ferr == nil && fh != nil {
		imageURL, err = pc.Files.SaveProductImage(fh)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}
		product.ImageURL = &imageURL
	}

	if err := pc.DB.Create(&product).Error; err != nil {
		if imageURL != "" {
			pc.Files.Remove(imageURL)
		}
		utils.RespondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Product created", product)
}

// UpdateProduct -> partial update; a new image replaces and removes the old one.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("product_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid product id"))
		return
	}

	var product models.Product
	if err := pc.DB.First(&product, id).Error; err != nil {
		utils.RespondServiceError(c, utils.NewNotFoundError("product", id))
		return
	}

	c.Request.ParseMultipartForm(services.MaxUploadSize)

	if name := c.PostForm("name"); name != "" {
		product.Name = name
	}
	if desc := c.PostForm("description"); desc != "" {
		product.Description = desc
	}
	if priceStr := c.PostForm("price"); priceStr != "" {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price <= 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid price"))
			return
		}
		product.Price = price
	}
	if unit := c.PostForm("unit"); unit != "" {
		product.Unit = unit
	}
	if icon := c.PostForm("icon"); icon != "" {
		product.Icon = icon
	}
	if avail := c.PostForm("available"); avail != "" {
		product.Available = parseBool(avail)
	}

	if fh, ferr := c.FormFile("image"); ferr == nil && fh != nil {
		imageURL, err := pc.Files.SaveProductImage(fh)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}
		if product.ImageURL != nil {
			pc.Files.Remove(*product.ImageURL)
		}
		product.ImageURL = &imageURL
	}

	if err := pc.DB.Save(&product).Error; err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product updated", product)
}

// DeleteProduct
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("product_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid product id"))
		return
	}

	var product models.Product
	if err := pc.DB.First(&product, id).Error; err != nil {
		utils.RespondServiceError(c, utils.NewNotFoundError("product", id))
		return
	}

	if err := pc.DB.Delete(&product).Error; err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product deleted", gin.H{"product_id": id})
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
