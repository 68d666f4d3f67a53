package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainCheckout "tablet-fleet-manager/internal/domain/checkout"
	"tablet-fleet-manager/internal/usecase/checkout"
	appErrors "tablet-fleet-manager/pkg/errors"
	"tablet-fleet-manager/pkg/utils"
)

type CheckoutHandler struct {
	service *checkout.Service
}

func NewCheckoutHandler(service *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

func (h *CheckoutHandler) RegisterRoutes(router *gin.RouterGroup) {
	checkouts := router.Group("/checkouts")
	{
		checkouts.POST("", h.CreateCheckout)
		checkouts.GET("/:id", h.GetCheckout)
		checkouts.POST("/items/:itemId/return", h.ReturnItem)
	}
}

func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	var req checkout.CreateCheckoutRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.CreateCheckout(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, appErrors.ErrDeviceUnavailable) {
			utils.ErrorResponse(c, http.StatusConflict, err.Error())
			return
		}
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Checkout created successfully", resp)
}

func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	checkoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid checkout ID")
		return
	}

	resp, err := h.service.GetCheckout(c.Request.Context(), checkoutID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Checkout retrieved successfully", resp)
}

func (h *CheckoutHandler) ReturnItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid item ID")
		return
	}

	if err := h.service.ReturnItem(c.Request.Context(), itemID); err != nil {
		switch {
		case errors.Is(err, domainCheckout.ErrItemNotFound):
			utils.ErrorResponse(c, http.StatusNotFound, err.Error())
		case errors.Is(err, domainCheckout.ErrItemAlreadyReturned):
			utils.ErrorResponse(c, http.StatusConflict, err.Error())
		default:
			utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Item returned successfully", nil)
}
