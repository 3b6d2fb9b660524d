package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/config"
	"github.com/kendall-kelly/storefront-api/repositories"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/kendall-kelly/storefront-api/utils"
	"go.uber.org/zap"
)

// PaginationMeta describes one page of a listing
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

func respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func respondPage(c *gin.Context, data interface{}, page repositories.Page, total int64) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"meta": PaginationMeta{
			CurrentPage: page.Number,
			PerPage:     page.PerPage,
			Total:       total,
			LastPage:    page.LastPage(total),
		},
	})
}

func respondError(c *gin.Context, status int, code, message string, details interface{}) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

// respondBindingError reports request decoding and validation failures
func respondBindingError(c *gin.Context, err error) {
	respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid request data", utils.FieldErrors(err))
}

// respondServiceError maps a service error onto the error envelope. resource
// is the entity addressed by the request path; a missing resource is a 404
// while any other missing reference is a 422.
func respondServiceError(c *gin.Context, err error, resource string) {
	var validationErr *services.ValidationError
	var notFoundErr *services.ReferenceNotFoundError
	var conflictErr *services.ConflictError
	var processingErr *services.OrderProcessingError
	var uploadErr *utils.FileUploadError

	switch {
	case errors.As(err, &processingErr):
		config.GetLogger().Error("Order processing failed", zap.String("path", c.FullPath()), zap.Error(err))
		var details interface{}
		if cfg := config.GetConfig(); cfg != nil && cfg.AppDebug {
			details = gin.H{"debug_error": processingErr.Cause.Error()}
		}
		respondError(c, http.StatusInternalServerError, "ORDER_PROCESSING_FAILED",
			"An error occurred while processing your order. Please try again later.", details)

	case errors.As(err, &validationErr):
		respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid request data",
			map[string]string{validationErr.Field: validationErr.Reason})

	case errors.As(err, &notFoundErr):
		if notFoundErr.Entity == resource {
			respondNotFound(c, resource)
			return
		}
		respondError(c, http.StatusUnprocessableEntity, "REFERENCE_NOT_FOUND",
			fmt.Sprintf("The selected %s does not exist", notFoundErr.Entity),
			gin.H{"entity": notFoundErr.Entity, "id": notFoundErr.ID})

	case errors.As(err, &conflictErr):
		respondError(c, http.StatusConflict, strings.ToUpper(conflictErr.Field)+"_EXISTS",
			fmt.Sprintf("The %s has already been taken", conflictErr.Field), nil)

	case errors.As(err, &uploadErr):
		respondError(c, http.StatusUnprocessableEntity, "INVALID_FILE", uploadErr.Message, gin.H{"reason": uploadErr.Code})

	default:
		config.GetLogger().Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "An unexpected error occurred", nil)
	}
}

func respondNotFound(c *gin.Context, resource string) {
	respondError(c, http.StatusNotFound, strings.ToUpper(resource)+"_NOT_FOUND",
		fmt.Sprintf("%s not found", strings.ToUpper(resource[:1])+resource[1:]), nil)
}

// pathID parses the :id parameter. A malformed id is reported as a missing resource.
func pathID(c *gin.Context, resource string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondNotFound(c, resource)
		return 0, false
	}
	return uint(id), true
}

// pageFromQuery reads ?page= and ?per_page=; missing or malformed values fall back to defaults
func pageFromQuery(c *gin.Context) repositories.Page {
	number, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(repositories.DefaultPerPage)))
	return repositories.NewPage(number, perPage)
}
