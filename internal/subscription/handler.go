package subscription

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"fitnesspoint/internal/api"
	"fitnesspoint/internal/auth"
	"fitnesspoint/internal/billing"
	"fitnesspoint/internal/logger"
	"fitnesspoint/internal/member"
	"fitnesspoint/internal/plan"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

type BillingRequest struct {
	RateTypeID     int             `json:"rate_type_id" binding:"omitempty,min=1"`
	TaxRateID      int             `json:"tax_rate_id" binding:"omitempty,min=1"`
	DiscountTypeID *int            `json:"discount_type_id,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	InvoiceDate    *time.Time      `json:"invoice_date,omitempty"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	Notes          string          `json:"notes" binding:"max=1000"`
	SendInvoice    bool            `json:"send_invoice"`
}

func (r BillingRequest) options(userID int) Options {
	return Options{
		RateTypeID:     r.RateTypeID,
		TaxRateID:      r.TaxRateID,
		DiscountTypeID: r.DiscountTypeID,
		DiscountAmount: r.DiscountAmount,
		InvoiceDate:    r.InvoiceDate,
		DueDate:        r.DueDate,
		Notes:          r.Notes,
		CreatedBy:      userID,
		SendInvoice:    r.SendInvoice,
	}
}

type RenewRequest struct {
	PlanID *int `json:"plan_id,omitempty" binding:"omitempty,min=1"`
	BillingRequest
}

type UpgradeRequest struct {
	PlanID           int        `json:"plan_id" binding:"required,min=1"`
	UpgradeDate      *time.Time `json:"upgrade_date,omitempty"`
	DisableProration bool       `json:"disable_proration"`
	BillingRequest
}

func subscriptionID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("subscriptionID"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid subscription ID"})
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrSubscriptionNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Subscription not found"})
	case errors.Is(err, member.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Member not found"})
	case errors.Is(err, plan.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Plan not found"})
	case errors.Is(err, ErrCannotRenew), errors.Is(err, ErrCannotUpgrade):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrBillingConfigMissing),
		errors.Is(err, billing.ErrRateTypeNotFound),
		errors.Is(err, billing.ErrTaxRateNotFound),
		errors.Is(err, billing.ErrDiscountTypeNotFound):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: err.Error()})
	default:
		logger.WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
	}
}

// @Summary      Preview a renewal
// @Description  Classifies the renewal and reports where the next term would start
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Param        subscriptionID path int true "Subscription ID"
// @Success      200 {object} subscription.RenewalPreview
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /subscriptions/{subscriptionID}/renewal [get]
func (h *Handler) Preview(c *gin.Context) {
	id, ok := subscriptionID(c)
	if !ok {
		return
	}

	preview, err := h.service.PreviewRenewal(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to preview renewal")
		return
	}

	c.JSON(http.StatusOK, preview)
}

// @Summary      Renew a subscription
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        subscriptionID path int true "Subscription ID"
// @Param        request body subscription.RenewRequest true "Renewal options"
// @Success      200 {object} subscription.RenewalResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /subscriptions/{subscriptionID}/renew [post]
func (h *Handler) Renew(c *gin.Context) {
	id, ok := subscriptionID(c)
	if !ok {
		return
	}

	var req RenewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithBindError(c, err)
		return
	}

	userID, _ := auth.GetUserID(c)
	result, err := h.service.RenewSubscription(c.Request.Context(), id, req.PlanID, req.options(userID))
	if err != nil {
		writeError(c, err, "Failed to renew subscription")
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary      Upgrade a subscription
// @Description  Replaces the subscription with a new one on another plan and bills the prorated difference
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        subscriptionID path int true "Subscription ID"
// @Param        request body subscription.UpgradeRequest true "Upgrade options"
// @Success      201 {object} subscription.UpgradeResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /subscriptions/{subscriptionID}/upgrade [post]
func (h *Handler) Upgrade(c *gin.Context) {
	id, ok := subscriptionID(c)
	if !ok {
		return
	}

	var req UpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithBindError(c, err)
		return
	}

	userID, _ := auth.GetUserID(c)
	opts := req.options(userID)
	opts.UpgradeDate = req.UpgradeDate
	opts.DisableProration = req.DisableProration

	result, err := h.service.UpgradeSubscription(c.Request.Context(), id, req.PlanID, opts)
	if err != nil {
		writeError(c, err, "Failed to upgrade subscription")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// @Summary      List subscription invoices
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Param        subscriptionID path int true "Subscription ID"
// @Success      200 {array} billing.Invoice
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /subscriptions/{subscriptionID}/invoices [get]
func (h *Handler) Invoices(c *gin.Context) {
	id, ok := subscriptionID(c)
	if !ok {
		return
	}

	invoices, err := h.service.ListInvoices(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to fetch invoices")
		return
	}

	c.JSON(http.StatusOK, invoices)
}

// @Summary      List a member's subscriptions
// @Description  Includes rows cancelled by upgrades, newest first
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        memberID path int true "Member ID"
// @Success      200 {array} subscription.MemberSubscription
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /members/{memberID}/subscriptions [get]
func (h *Handler) MemberSubscriptions(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("memberID"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid member ID"})
		return
	}

	subs, err := h.service.ListMemberSubscriptions(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to fetch subscriptions")
		return
	}

	c.JSON(http.StatusOK, subs)
}

// @Summary      List active plans
// @Tags         plans
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} plan.Plan
// @Failure      500 {object} api.ErrorResponse
// @Router       /plans [get]
func (h *Handler) Plans(c *gin.Context) {
	plans, err := h.service.ListPlans(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to fetch plans")
		return
	}

	c.JSON(http.StatusOK, plans)
}
