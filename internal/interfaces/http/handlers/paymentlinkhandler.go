package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agendapay/agendapay/internal/interfaces/dto"
	"github.com/agendapay/agendapay/internal/shared/errors"
	"github.com/agendapay/agendapay/internal/shared/logger"
	"github.com/agendapay/agendapay/internal/shared/utils"
)

type PaymentLinkHandler struct {
	links         paymentLinkService
	createOrderUC createOrderUseCase
	shortLinkBase string
	logger        logger.Interface
}

func NewPaymentLinkHandler(
	links paymentLinkService,
	createOrderUC createOrderUseCase,
	shortLinkBaseURL string,
	logger logger.Interface,
) *PaymentLinkHandler {
	return &PaymentLinkHandler{
		links:         links,
		createOrderUC: createOrderUC,
		shortLinkBase: strings.TrimRight(shortLinkBaseURL, "/"),
		logger:        logger,
	}
}

// @Summary		Create payment link
// @Tags			payment-links
// @Accept			json
// @Produce		json
// @Param			link	body		dto.CreatePaymentLinkRequest										true	"Booking payload"
// @Success		201		{object}	utils.APIResponse{data=dto.CreatePaymentLinkResponse}
// @Failure		400		{object}	utils.APIResponse
// @Router			/payment-links [post]
func (h *PaymentLinkHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid payment link request", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	link, err := h.links.Create(c.Request.Context(), req.ToPayload(), req.Amount, req.TTL())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, dto.CreatePaymentLinkResponse{
		ShortURL:  h.shortLinkBase + "/" + link.ID,
		ShortID:   link.ID,
		ExpiresAt: link.ExpiresAt,
	}, "payment link created")
}

// @Summary		Read payment link
// @Tags			payment-links
// @Produce		json
// @Param			id	query		string	true	"Short id"
// @Success		200	{object}	utils.APIResponse{data=dto.PaymentLinkResponse}
// @Failure		404	{object}	utils.APIResponse	"Not found"
// @Failure		409	{object}	utils.APIResponse	"Already used"
// @Failure		410	{object}	utils.APIResponse	"Expired"
// @Router			/payment-links [get]
func (h *PaymentLinkHandler) Get(c *gin.Context) {
	linkID, ok := h.linkID(c)
	if !ok {
		return
	}

	link, err := h.links.Get(c.Request.Context(), linkID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", dto.ToPaymentLinkResponse(link))
}

// @Summary		Mark payment link used or delete it
// @Tags			payment-links
// @Produce		json
// @Param			id			query		string	true	"Short id"
// @Param			markAsUsed	query		bool	false	"Mark as used instead of deleting"
// @Success		200			{object}	utils.APIResponse{data=dto.ReleasePaymentLinkResponse}
// @Failure		404			{object}	utils.APIResponse
// @Router			/payment-links [delete]
func (h *PaymentLinkHandler) Release(c *gin.Context) {
	linkID, ok := h.linkID(c)
	if !ok {
		return
	}

	markAsUsed := false
	if raw := c.Query("markAsUsed"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			utils.ErrorResponseWithError(c, errors.NewValidationError("markAsUsed must be a boolean"))
			return
		}
		markAsUsed = parsed
	}

	affected, err := h.links.Release(c.Request.Context(), linkID, markAsUsed)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", dto.ReleasePaymentLinkResponse{
		ID:         linkID,
		MarkAsUsed: markAsUsed,
		Affected:   affected,
	})
}

// @Summary		Payment link statistics
// @Tags			payment-links
// @Produce		json
// @Success		200	{object}	utils.APIResponse{data=paymentlink.Stats}
// @Router			/payment-links [patch]
func (h *PaymentLinkHandler) Stats(c *gin.Context) {
	stats, err := h.links.Stats(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", stats)
}

// @Summary		Create payment order from link
// @Description	Consume the link and open a gateway order from its booking payload
// @Tags			payment-links
// @Accept			json
// @Produce		json
// @Param			id		path		string						true	"Short id"
// @Param			order	body		dto.OrderFromLinkRequest	false	"Optional session id"
// @Success		201		{object}	utils.APIResponse{data=usecases.CreateOrderResult}
// @Failure		404		{object}	utils.APIResponse
// @Failure		409		{object}	utils.APIResponse
// @Failure		410		{object}	utils.APIResponse
// @Router			/payment-links/{id}/order [post]
func (h *PaymentLinkHandler) CreateOrder(c *gin.Context) {
	linkID := c.Param("id")

	var req dto.OrderFromLinkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body"))
			return
		}
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.createOrderUC.ExecuteFromLink(c.Request.Context(), linkID, req.SessionID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "payment order created")
}

func (h *PaymentLinkHandler) linkID(c *gin.Context) (string, bool) {
	linkID := strings.TrimSpace(c.Query("id"))
	if linkID == "" {
		utils.ErrorResponseWithError(c, errors.NewValidationError("id is required"))
		return "", false
	}
	return linkID, true
}
