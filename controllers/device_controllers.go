package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mufufarm/farmstore-api/utils"
)

// deviceCookieMaxAge keeps the device cookie for a year.
const deviceCookieMaxAge = 365 * 24 * 60 * 60

// GetOrCreateDeviceID hands the browser a stable device identifier. The
// cookie is readable by the frontend so it can attach the id to push token
// registrations.
func GetOrCreateDeviceID(c *gin.Context) {
	deviceID, err := c.Cookie("device_id")
	if err != nil || deviceID == "" {
		deviceID = uuid.New().String()
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("device_id", deviceID, deviceCookieMaxAge, "/", "", false, false)

	utils.RespondJSON(c, http.StatusOK, "Device id", gin.H{"device_id": deviceID})
}
