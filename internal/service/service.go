// Package service holds what the use-case services share: command
// instrumentation and row lock ordering.
package service

import (
	"context"
	"errors"
	"slices"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/metrics"
	"github.com/Domenick1991/skybooking/internal/telemetry"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Track opens a span for command and returns a func that records the
// command's outcome once it returns. Call it as
//
//	ctx, done := service.Track(ctx, s.log, "create_flight")
//	defer func() { done(err) }()
func Track(ctx context.Context, log logrus.FieldLogger, command string) (context.Context, func(error)) {
	ctx, span := telemetry.Start(ctx, command, attribute.String("command", command))
	return ctx, func(err error) {
		telemetry.End(span, err)
		metrics.ObserveCommand(command, err)

		entry := log.WithField("command", command)
		var derr *domain.Error
		switch {
		case err == nil:
			entry.Debug("command succeeded")
		case errors.As(err, &derr):
			entry.WithField("code", derr.Code).Debugf("command rejected: %v", err)
		default:
			entry.WithError(err).Error("command failed")
		}
	}
}

// FieldOrMissing turns a NotFound from a parent lookup into a field-level
// validation error, leaving every other error untouched.
func FieldOrMissing(err error, field string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Invalid(domain.FieldErrors{field: {domain.MsgMustExist}})
	}
	return err
}

// LockOrder returns ids deduplicated in ascending order, the order in which
// rows of one table are locked inside a transaction.
func LockOrder(ids ...int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
