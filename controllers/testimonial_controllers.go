package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mufufarm/farmstore-api/models"
	"github.com/mufufarm/farmstore-api/utils"
)

type TestimonialController struct {
	DB *gorm.DB
}

func NewTestimonialController(db *gorm.DB) *TestimonialController {
	return &TestimonialController{DB: db}
}

// GetAllTestimonials -> public listing, active entries by default.
func (tc *TestimonialController) GetAllTestimonials(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 {
		limit = 100
	}

	query := tc.DB.Model(&models.Testimonial{})
	if c.DefaultQuery("active_only", "true") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var testimonials []models.Testimonial
	if err := query.Offset(skip).Limit(limit).Find(&testimonials).Error; err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of testimonials", testimonials)
}

// CreateTestimonial (admin)
func (tc *TestimonialController) CreateTestimonial(c *gin.Context) {
	var body struct {
		Name     string `json:"name" binding:"required"`
		Role     string `json:"role" binding:"required"`
		Text     string `json:"text" binding:"required"`
		Rating   int    `json:"rating"`
		IsActive *bool  `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	testimonial := models.Testimonial{
		Name:     body.Name,
		Role:     body.Role,
		Text:     body.Text,
		Rating:   5,
		IsActive: true,
	}
	if body.Rating != 0 {
		testimonial.Rating = body.Rating
	}
	if body.IsActive != nil {
		testimonial.IsActive = *body.IsActive
	}

	if err := tc.DB.Create(&testimonial).Error; err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Testimonial created", testimonial)
}

// UpdateTestimonial (admin)
func (tc *TestimonialController) UpdateTestimonial(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("testimonial_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid testimonial id"))
		return
	}

	var testimonial models.Testimonial
	if err := tc.DB.First(&testimonial, id).Error; err != nil {
		utils.RespondServiceError(c, utils.NewNotFoundError("testimonial", id))
		return
	}

	var body struct {
		Name     *string `json:"name"`
		Role     *string `json:"role"`
		Text     *string `json:"text"`
		Rating   *int    `json:"rating"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.Name != nil {
		testimonial.Name = *body.Name
	}
	if body.Role != nil {
		testimonial.Role = *body.Role
	}
	if body.Text != nil {
		testimonial.Text = *body.Text
	}
	if body.Rating != nil {
		testimonial.Rating = *body.Rating
	}
	if body.IsActive != nil {
		testimonial.IsActive = *body.IsActive
	}

	if err := tc.DB.Save(&testimonial).Error; err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Testimonial updated", testimonial)
}

// DeleteTestimonial (admin)
func (tc *TestimonialController) DeleteTestimonial(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("testimonial_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid testimonial id"))
		return
	}

	result := tc.DB.Delete(&models.Testimonial{}, id)
	if result.Error != nil {
		utils.RespondServiceError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondServiceError(c, utils.NewNotFoundError("testimonial", id))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Testimonial deleted", gin.H{"testimonial_id": id})
}
