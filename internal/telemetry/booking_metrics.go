package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// Booking submission metrics
	bookingCounter      metric.Int64Counter
	bookingDuration     metric.Float64Histogram
	bookingParticipants metric.Int64Histogram

	// Booking submission error metrics
	bookingErrorCounter metric.Int64Counter
)

// InitBookingMetrics initializes booking-related metrics
func InitBookingMetrics() error {
	meter := otel.Meter("calabriando.booking")

	var err error

	bookingCounter, err = meter.Int64Counter(
		"booking.create.count",
		metric.WithDescription("Number of booking submissions"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return err
	}

	bookingDuration, err = meter.Float64Histogram(
		"booking.create.duration",
		metric.WithDescription("Duration of booking submissions"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	bookingParticipants, err = meter.Int64Histogram(
		"booking.create.participants",
		metric.WithDescription("Participants per booking"),
		metric.WithUnit("{person}"),
	)
	if err != nil {
		return err
	}

	bookingErrorCounter, err = meter.Int64Counter(
		"booking.create.errors",
		metric.WithDescription("Number of rejected booking submissions"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordBookingCreated records an accepted booking submission
func RecordBookingCreated(ctx context.Context, durationMs float64, bookingType string, participants int64) {
	if bookingCounter != nil {
		bookingCounter.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("status", "success"),
				attribute.String("booking_type", bookingType),
			),
		)
	}

	if bookingDuration != nil {
		bookingDuration.Record(ctx, durationMs,
			metric.WithAttributes(attribute.String("status", "success")),
		)
	}

	if bookingParticipants != nil {
		bookingParticipants.Record(ctx, participants,
			metric.WithAttributes(attribute.String("booking_type", bookingType)),
		)
	}
}

// RecordBookingError records a rejected booking submission
func RecordBookingError(ctx context.Context, errorType string, durationMs float64) {
	if bookingErrorCounter != nil {
		bookingErrorCounter.Add(ctx, 1,
			metric.WithAttributes(attribute.String("error_type", errorType)),
		)
	}

	if bookingDuration != nil {
		bookingDuration.Record(ctx, durationMs,
			metric.WithAttributes(
				attribute.String("status", "error"),
				attribute.String("error_type", errorType),
			),
		)
	}
}
