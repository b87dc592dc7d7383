package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/calabriando/api/internal/modules/serializer"
	"github.com/calabriando/api/internal/modules/service"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(s service.BookingService) *BookingHandler {
	return &BookingHandler{svc: s}
}

type CreateBookingReq struct {
	EntityID     string `json:"entity_id" binding:"required,uuid"`
	EntityType   string `json:"entity_type" binding:"required,oneof=tour adventure event"`
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"required"`
	Date         string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime    string `json:"start_time" binding:"required,timeofday"`
	Participants int    `json:"participants" binding:"required,min=1"`
	Method       string `json:"payment_method" binding:"required,oneof=card wallet"`
}

type BookingResp struct {
	Booking  any  `json:"booking"`
	MailSent bool `json:"mail_sent"`
}

// Create godoc
//
//	@Summary		Submit a booking
//	@Description	Persists the booking as pending and sends the confirmation email best-effort. A mail failure is reported in the response, never rolled back.
//	@Tags			bookings
//	@Accept			json
//	@Produce		json
//	@Param			booking	body		CreateBookingReq	true	"Booking request"
//	@Success		200		{object}	serializer.Response{data=BookingResp}
//	@Failure		409		{object}	serializer.Response
//	@Failure		422		{object}	serializer.Response
//	@Router			/bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	out, err := h.svc.Create(c.Request.Context(), service.CreateBookingInput{
		EntityID:     uuid.MustParse(req.EntityID),
		EntityType:   req.EntityType,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Date:         req.Date,
		StartTime:    req.StartTime,
		Participants: req.Participants,
		Method:       req.Method,
	})
	if err != nil {
		respondBookingErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: BookingResp{Booking: out.Booking, MailSent: out.MailSent}})
}

// Get godoc
//
//	@Summary	Fetch a booking by reference
//	@Tags		bookings
//	@Produce	json
//	@Param		reference	path		string	true	"Booking reference"
//	@Success	200			{object}	serializer.Response{data=model.Booking}
//	@Router		/bookings/{reference} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.svc.GetByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondBookingErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: b})
}

// ListByEntity godoc
//
//	@Summary	Reservations against one bookable entity
//	@Tags		bookings
//	@Produce	json
//	@Param		entity_id	path		string	true	"Entity ID"	Format(uuid)
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=[]model.Booking}
//	@Router		/admin/bookings/{entity_id} [get]
func (h *BookingHandler) ListByEntity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("entity_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	rows, err := h.svc.ListByEntity(c.Request.Context(), id)
	if err != nil {
		respondBookingErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: rows})
}

// ConfirmationPDF godoc
//
//	@Summary		Download the booking confirmation
//	@Description	Returns a PDF carrying the booking summary and a QR code with a signed payload.
//	@Tags			bookings
//	@Produce		application/pdf
//	@Param			reference	path	string	true	"Booking reference"
//	@Success		200			{file}	binary
//	@Router			/bookings/{reference}/confirmation [get]
func (h *BookingHandler) ConfirmationPDF(c *gin.Context) {
	reference := c.Param("reference")
	pdf, err := h.svc.ConfirmationPDF(c.Request.Context(), reference)
	if err != nil {
		respondBookingErr(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", reference))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// StartCheckout godoc
//
//	@Summary		Open a card checkout session
//	@Description	Only valid for pending card bookings. Returns the provider redirect URL.
//	@Tags			payments
//	@Produce		json
//	@Param			reference	path		string	true	"Booking reference"
//	@Success		200			{object}	serializer.Response{data=payment.CheckoutSession}
//	@Failure		409			{object}	serializer.Response
//	@Router			/payments/checkout/{reference} [post]
func (h *BookingHandler) StartCheckout(c *gin.Context) {
	sess, err := h.svc.StartCheckout(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondBookingErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: sess})
}

type SettleCheckoutReq struct {
	Paid bool `json:"paid"`
}

// SettleCheckout godoc
//
//	@Summary	Settle a card checkout session
//	@Tags		payments
//	@Accept		json
//	@Produce	json
//	@Param		reference	path		string				true	"Booking reference"
//	@Param		result		body		SettleCheckoutReq	true	"Checkout outcome"
//	@Success	200			{object}	serializer.Response{data=model.Booking}
//	@Router		/payments/checkout/{reference}/settle [post]
func (h *BookingHandler) SettleCheckout(c *gin.Context) {
	var req SettleCheckoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	b, err := h.svc.SettleCheckout(c.Request.Context(), c.Param("reference"), req.Paid)
	if err != nil {
		respondBookingErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: b})
}

// StartWalletOrder godoc
//
//	@Summary		Open a wallet payment order
//	@Description	Only valid for pending wallet bookings. Returns the approval URL the client redirects to.
//	@Tags			payments
//	@Produce		json
//	@Param			reference	path		string	true	"Booking reference"
//	@Success		200			{object}	serializer.Response{data=payment.WalletOrder}
//	@Failure		409			{object}	serializer.Response
//	@Router			/payments/wallet/{reference} [post]
func (h *BookingHandler) StartWalletOrder(c *gin.Context) {
	order, err := h.svc.StartWalletOrder(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondBookingErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: order})
}

type WalletCaptureReq struct {
	OrderID string `json:"order_id" binding:"required"`
}

// CaptureWalletOrder godoc
//
//	@Summary		Capture an approved wallet order
//	@Description	Called by the wallet provider webhook after buyer approval. Captures the order and marks the booking paid.
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			capture	body		WalletCaptureReq	true	"Approved order"
//	@Security		BasicAuth
//	@Success		200		{object}	serializer.Response{data=model.Booking}
//	@Router			/payments/wallet/capture [post]
func (h *BookingHandler) CaptureWalletOrder(c *gin.Context) {
	var req WalletCaptureReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	b, err := h.svc.CompleteWalletOrder(c.Request.Context(), req.OrderID)
	if err != nil {
		respondBookingErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: b})
}

func respondBookingErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, service.ErrEntityNotFound):
		c.JSON(http.StatusNotFound, serializer.Err(http.StatusNotFound, "not found", err))
	case errors.Is(err, service.ErrNotBookable),
		errors.Is(err, service.ErrDateUnavailable),
		errors.Is(err, service.ErrTooManyPeople),
		errors.Is(err, service.ErrInvalidPaymentFlow):
		c.JSON(http.StatusConflict, serializer.Err(http.StatusConflict, err.Error(), err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}
