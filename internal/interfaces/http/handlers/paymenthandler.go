package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agendapay/agendapay/internal/application/payment/usecases"
	"github.com/agendapay/agendapay/internal/interfaces/dto"
	"github.com/agendapay/agendapay/internal/shared/errors"
	"github.com/agendapay/agendapay/internal/shared/logger"
	"github.com/agendapay/agendapay/internal/shared/utils"
)

type PaymentHandler struct {
	createOrderUC   createOrderUseCase
	handleWebhookUC handleWebhookUseCase
	pollStatusUC    pollStatusUseCase
	returnURL       string
	logger          logger.Interface
}

func NewPaymentHandler(
	createOrderUC createOrderUseCase,
	handleWebhookUC handleWebhookUseCase,
	pollStatusUC pollStatusUseCase,
	frontendReturnURL string,
	logger logger.Interface,
) *PaymentHandler {
	return &PaymentHandler{
		createOrderUC:   createOrderUC,
		handleWebhookUC: handleWebhookUC,
		pollStatusUC:    pollStatusUC,
		returnURL:       frontendReturnURL,
		logger:          logger,
	}
}

// @Summary		Create payment order
// @Description	Open a gateway order for a booking session and return the checkout redirect
// @Tags			payments
// @Accept			json
// @Produce		json
// @Param			order	body		dto.CreateOrderRequest										true	"Order data"
// @Success		201		{object}	utils.APIResponse{data=usecases.CreateOrderResult}	"Order created"
// @Failure		400		{object}	utils.APIResponse										"Bad request"
// @Failure		502		{object}	utils.APIResponse										"Gateway error"
// @Router			/payments [post]
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid create order request", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.createOrderUC.Execute(c.Request.Context(), req.ToCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "payment order created")
}

// @Summary		Gateway payment notification
// @Description	Signed form-encoded notification from the gateway. Acknowledged with 200 unless the signature is invalid or the status fetch fails.
// @Tags			payments
// @Accept			x-www-form-urlencoded
// @Produce		json
// @Success		200	{object}	usecases.WebhookResult	"Notification acknowledged"
// @Failure		400	{object}	utils.APIResponse		"Invalid signature or missing token"
// @Failure		502	{object}	utils.APIResponse		"Gateway status unavailable, retry later"
// @Router			/payments/webhook [post]
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		h.logger.Warnw("failed to parse webhook body", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid form body"))
		return
	}

	// Only the body is signed; query parameters on the callback URL are not.
	result, err := h.handleWebhookUC.Execute(c.Request.Context(), firstValues(c.Request.PostForm))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary		Poll payment status
// @Description	Fetch the authoritative order status and confirm the booking when paid
// @Tags			payments
// @Produce		json
// @Param			token			query		string	true	"Gateway token"
// @Param			sessionId		query		string	false	"Booking session id"
// @Param			commerceOrder	query		string	false	"Commerce order"
// @Success		200				{object}	usecases.PollStatusResult
// @Failure		400				{object}	utils.APIResponse
// @Failure		502				{object}	utils.APIResponse
// @Router			/payments/status [get]
func (h *PaymentHandler) PollStatus(c *gin.Context) {
	var req dto.PollStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request"))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.pollStatusUC.Execute(c.Request.Context(), req.ToCommand(usecases.SourcePoll))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary		Browser return from checkout
// @Description	Reconcile the order and redirect the payer to the frontend result page
// @Tags			payments
// @Param			token	query	string	true	"Gateway token"
// @Success		303
// @Router			/payments/return [get]
func (h *PaymentHandler) Return(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		token = strings.TrimSpace(c.PostForm("token"))
	}

	if token == "" {
		h.redirect(c, usecases.PollStatusError, "")
		return
	}

	result, err := h.pollStatusUC.Execute(c.Request.Context(), usecases.PollStatusCommand{
		Token:  token,
		Source: usecases.SourceReturn,
	})
	if err != nil {
		// The webhook may still settle the order, so the payer sees pending.
		h.logger.Warnw("return reconciliation failed", "token", utils.MaskToken(token), "error", err)
		h.redirect(c, usecases.PollStatusPending, token)
		return
	}

	h.redirect(c, result.Status, token)
}

func (h *PaymentHandler) redirect(c *gin.Context, status, token string) {
	q := url.Values{}
	q.Set("status", status)
	if token != "" {
		q.Set("token", token)
	}

	target := h.returnURL
	if strings.Contains(target, "?") {
		target += "&" + q.Encode()
	} else {
		target += "?" + q.Encode()
	}
	c.Redirect(http.StatusSeeOther, target)
}

func firstValues(values url.Values) map[string]string {
	params := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}
