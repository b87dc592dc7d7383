package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/calabriando/api/internal/config"
	"github.com/calabriando/api/internal/infra/httpclient"
	"github.com/calabriando/api/internal/infra/payment"
	mq "github.com/calabriando/api/internal/infra/queue"
	"github.com/calabriando/api/internal/modules/model"
	"github.com/calabriando/api/internal/modules/repo"
	"github.com/calabriando/api/internal/pkg/utils/tokens"
	"github.com/calabriando/api/internal/telemetry"
	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// bookingCategory maps the public booking type discriminator to the content
// category holding the bookable rows.
var bookingCategory = map[string]string{
	model.BookingTypeTour:      "tours",
	model.BookingTypeAdventure: "adventures",
	model.BookingTypeEvent:     "events",
}

type CreateBookingInput struct {
	EntityID     uuid.UUID
	EntityType   string
	Name         string
	Email        string
	Phone        string
	Date         string
	StartTime    string
	Participants int
	Method       string
}

type CreateBookingOutput struct {
	Booking *model.Booking
	// MailSent reports whether the confirmation email went out. A false
	// value never rolls the booking back: a persisted-but-unnotified
	// reservation beats a lost one.
	MailSent bool
}

type BookingService interface {
	Create(ctx context.Context, in CreateBookingInput) (*CreateBookingOutput, error)
	GetByReference(ctx context.Context, reference string) (*model.Booking, error)
	// ConfirmationPDF renders the confirmation artifact: a printable
	// summary with a machine-scannable QR payload.
	ConfirmationPDF(ctx context.Context, reference string) ([]byte, error)
	// ListByEntity returns every reservation against one bookable row,
	// newest first, for the admin booking screen.
	ListByEntity(ctx context.Context, entityID uuid.UUID) ([]model.Booking, error)

	StartCheckout(ctx context.Context, reference string) (*payment.CheckoutSession, error)
	StartWalletOrder(ctx context.Context, reference string) (*payment.WalletOrder, error)
	CompleteWalletOrder(ctx context.Context, orderID string) (*model.Booking, error)
	SettleCheckout(ctx context.Context, reference string, paid bool) (*model.Booking, error)
}

type bookingService struct {
	bookings repo.BookingRepo
	content  ContentService
	mailer   *httpclient.MailerClient
	checkout *payment.CheckoutClient
	wallet   *payment.WalletClient
	pub      *mq.Publisher
	cfg      *config.Config
	log      *zap.Logger
}

func NewBookingService(
	bookings repo.BookingRepo,
	content ContentService,
	mailer *httpclient.MailerClient,
	checkout *payment.CheckoutClient,
	wallet *payment.WalletClient,
	pub *mq.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		bookings: bookings,
		content:  content,
		mailer:   mailer,
		checkout: checkout,
		wallet:   wallet,
		pub:      pub,
		cfg:      cfg,
		log:      log,
	}
}

func (s *bookingService) Create(ctx context.Context, in CreateBookingInput) (out *CreateBookingOutput, err error) {
	start := time.Now()
	defer func() {
		elapsed := float64(time.Since(start).Milliseconds())
		if err != nil {
			telemetry.RecordBookingError(ctx, errorType(err), elapsed)
			return
		}
		telemetry.RecordBookingCreated(ctx, elapsed, in.EntityType, int64(in.Participants))
	}()

	category, ok := bookingCategory[in.EntityType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotBookable, in.EntityType)
	}
	if in.Method != model.PaymentMethodCard && in.Method != model.PaymentMethodWallet {
		return nil, fmt.Errorf("unknown payment method %q", in.Method)
	}

	cfg, err := s.content.Config(category)
	if err != nil {
		return nil, err
	}
	entity, err := s.content.Get(ctx, category, in.EntityID)
	if err != nil {
		return nil, err
	}
	if !cfg.Bookable || !entity.IsVisible(cfg.DefaultVisible) {
		return nil, ErrNotBookable
	}
	if entity.Price == nil {
		return nil, ErrNotBookable
	}

	slot, ok := matchSlot(entity.AvailableDates.Data(), in.Date, in.StartTime)
	if !ok {
		return nil, ErrDateUnavailable
	}
	if in.Participants < 1 || in.Participants > entity.MaxParticipants {
		return nil, ErrTooManyPeople
	}

	unit := *entity.Price
	total := math.Round(unit*float64(in.Participants)*100) / 100

	b := &model.Booking{
		Reference:     newReference(),
		EntityID:      entity.ID,
		EntityType:    in.EntityType,
		Name:          in.Name,
		Email:         in.Email,
		Phone:         in.Phone,
		Date:          slot.Date,
		StartTime:     slot.StartTime,
		EndTime:       slot.EndTime,
		Participants:  in.Participants,
		UnitPrice:     unit,
		TotalPrice:    total,
		PaymentMethod: in.Method,
		PaymentStatus: model.PaymentStatusPending,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	out = &CreateBookingOutput{Booking: b, MailSent: true}
	if err := s.mailer.SendBookingConfirmation(ctx, b.Reference, b.EntityType); err != nil {
		// Reported to the caller, never rolled back.
		s.log.Error("booking confirmation mail failed",
			zap.String("reference", b.Reference), zap.Error(err))
		out.MailSent = false
	}

	if s.pub != nil {
		if err := s.pub.PublishJSON(ctx, "booking.created", b); err != nil {
			s.log.Warn("booking event publish failed",
				zap.String("reference", b.Reference), zap.Error(err))
		}
	}

	return out, nil
}

func (s *bookingService) GetByReference(ctx context.Context, reference string) (*model.Booking, error) {
	b, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *bookingService) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]model.Booking, error) {
	return s.bookings.ListByEntity(ctx, entityID)
}

func (s *bookingService) ConfirmationPDF(ctx context.Context, reference string) ([]byte, error) {
	b, err := s.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	qrPNG, err := qrcode.Encode(s.qrPayload(b), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 12, "Calabriando - Booking Confirmation")
	pdf.Ln(16)

	pdf.SetFont("Arial", "", 12)
	rows := [][2]string{
		{"Reference", b.Reference},
		{"Type", b.EntityType},
		{"Name", b.Name},
		{"Date", b.Date},
		{"Time", fmt.Sprintf("%s - %s", b.StartTime, b.EndTime)},
		{"Participants", fmt.Sprintf("%d", b.Participants)},
		{"Total", fmt.Sprintf("EUR %.2f", b.TotalPrice)},
		{"Payment", fmt.Sprintf("%s (%s)", b.PaymentMethod, b.PaymentStatus)},
	}
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(45, 8, row[0])
		pdf.SetFont("Arial", "", 12)
		pdf.Cell(0, 8, row[1])
		pdf.Ln(8)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 30, 45, 45, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// qrPayload encodes the scannable confirmation: booking fields plus an HMAC
// so staff scanners can verify it offline.
func (s *bookingService) qrPayload(b *model.Booking) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%d",
		b.Reference, b.EntityID.String(), b.Date, b.StartTime, b.Participants)
	sig := tokens.HMAC256Hex(s.cfg.Payments.BookingQRSecret, data)
	return data + "|" + sig[:16]
}

func (s *bookingService) StartCheckout(ctx context.Context, reference string) (*payment.CheckoutSession, error) {
	b, err := s.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if b.PaymentMethod != model.PaymentMethodCard || b.PaymentStatus != model.PaymentStatusPending {
		return nil, ErrInvalidPaymentFlow
	}

	session, err := s.checkout.CreateSession(ctx, cents(b.TotalPrice), b.Reference, b.EntityType)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.UpdatePaymentStatus(ctx, b.ID, model.PaymentStatusPending, session.SessionID); err != nil {
		s.log.Warn("could not record checkout session id",
			zap.String("reference", b.Reference), zap.Error(err))
	}
	return session, nil
}

func (s *bookingService) StartWalletOrder(ctx context.Context, reference string) (*payment.WalletOrder, error) {
	b, err := s.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if b.PaymentMethod != model.PaymentMethodWallet || b.PaymentStatus != model.PaymentStatusPending {
		return nil, ErrInvalidPaymentFlow
	}

	order, err := s.wallet.CreateOrder(ctx, cents(b.TotalPrice), b.Reference)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.UpdatePaymentStatus(ctx, b.ID, model.PaymentStatusPending, order.OrderID); err != nil {
		s.log.Warn("could not record wallet order id",
			zap.String("reference", b.Reference), zap.Error(err))
	}
	return order, nil
}

// CompleteWalletOrder captures an approved wallet order and marks the
// booking paid. Called from the wallet webhook.
func (s *bookingService) CompleteWalletOrder(ctx context.Context, orderID string) (*model.Booking, error) {
	b, err := s.bookings.GetByPaymentOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if b.PaymentStatus != model.PaymentStatusPending {
		return nil, ErrInvalidPaymentFlow
	}

	if _, err := s.wallet.CaptureOrder(ctx, orderID); err != nil {
		return nil, err
	}

	if err := s.bookings.UpdatePaymentStatus(ctx, b.ID, model.PaymentStatusPaid, orderID); err != nil {
		return nil, fmt.Errorf("mark booking paid: %w", err)
	}
	b.PaymentStatus = model.PaymentStatusPaid

	s.publishStatus(ctx, b)
	return b, nil
}

// SettleCheckout advances a card booking after the processor's redirect
// flow resolves.
func (s *bookingService) SettleCheckout(ctx context.Context, reference string, paid bool) (*model.Booking, error) {
	b, err := s.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus != model.PaymentStatusPending {
		return nil, ErrInvalidPaymentFlow
	}

	status := model.PaymentStatusCanceled
	if paid {
		status = model.PaymentStatusPaid
	}
	if err := s.bookings.UpdatePaymentStatus(ctx, b.ID, status, ""); err != nil {
		return nil, fmt.Errorf("settle booking: %w", err)
	}
	b.PaymentStatus = status

	s.publishStatus(ctx, b)
	return b, nil
}

func (s *bookingService) publishStatus(ctx context.Context, b *model.Booking) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishJSON(ctx, "booking."+b.PaymentStatus, b); err != nil {
		s.log.Warn("booking status publish failed",
			zap.String("reference", b.Reference), zap.Error(err))
	}
}

func matchSlot(slots []model.AvailabilitySlot, date, startTime string) (model.AvailabilitySlot, bool) {
	for _, slot := range slots {
		if slot.Date != date {
			continue
		}
		if startTime == "" || slot.StartTime == startTime {
			return slot, true
		}
	}
	return model.AvailabilitySlot{}, false
}

func cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// errorType buckets rejection reasons for the booking error counter.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrNotBookable):
		return "not_bookable"
	case errors.Is(err, ErrDateUnavailable):
		return "date_unavailable"
	case errors.Is(err, ErrTooManyPeople):
		return "too_many_people"
	case errors.Is(err, ErrEntityNotFound):
		return "entity_not_found"
	default:
		return "internal"
	}
}

func newReference() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("CAL-%s-%s", time.Now().Format("20060102"), suffix)
}
