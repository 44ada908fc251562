package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bizdesk/internal/data/entity"
	"bizdesk/internal/dto/response"
	"bizdesk/pkg/notify"
	"bizdesk/pkg/otp"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const deliveryTimeout = 5 * time.Second

// deliver sends msg and reports the outcome instead of failing the caller.
func deliver(ctx context.Context, n notify.Notifier, log *zap.Logger, msg notify.Message) response.DeliveryResponse {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	status := response.DeliveryResponse{Channel: string(msg.Channel), Sent: true}
	if err := n.Send(ctx, msg); err != nil {
		log.Warn("Notification not delivered",
			zap.Error(err),
			zap.String("channel", string(msg.Channel)),
			zap.String("recipient", msg.Recipient),
		)
		status.Sent = false
		status.Error = "delivery failed"
	}
	return status
}

type codeRequest struct {
	Key       string
	OwnerID   uuid.UUID
	Role      entity.UserRole
	Channel   notify.Channel
	Recipient string
	Subject   string
}

// dispatchCode issues a fresh code for req.Key, overwriting any previous one,
// and sends it. Only a failure to store the code is an error.
func dispatchCode(ctx context.Context, cache *otp.Cache, n notify.Notifier, log *zap.Logger, req codeRequest) (*response.OTPDispatchResponse, error) {
	entry, err := cache.Issue(ctx, req.Key, req.OwnerID, string(req.Role))
	if err != nil {
		return nil, storeErr(err)
	}

	msg := notify.Message{
		Channel:   req.Channel,
		Recipient: req.Recipient,
		Subject:   req.Subject,
		Body:      fmt.Sprintf("Your code is %s. It expires in %d minutes.", entry.Code, int(cache.TTL().Minutes())),
	}
	return &response.OTPDispatchResponse{
		Recipient: req.Recipient,
		ExpiresAt: entry.ExpiresAt,
		Delivery:  deliver(ctx, n, log, msg),
	}, nil
}

// withheldDispatch answers a code request that sends nothing, shaped like a
// sent one so the caller cannot tell which addresses have accounts.
func withheldDispatch(cache *otp.Cache, log *zap.Logger, channel notify.Channel, recipient, reason string) *response.OTPDispatchResponse {
	log.Info("OTP request withheld",
		zap.String("channel", string(channel)),
		zap.String("recipient", recipient),
		zap.String("reason", reason),
	)
	return &response.OTPDispatchResponse{
		Recipient: recipient,
		ExpiresAt: time.Now().Add(cache.TTL()),
		Delivery:  response.DeliveryResponse{Channel: string(channel), Sent: true},
	}
}

// checkCode verifies code for key and that it was issued to ownerID.
func checkCode(ctx context.Context, cache *otp.Cache, log *zap.Logger, key, code string, ownerID uuid.UUID) error {
	entry, err := cache.Verify(ctx, key, code)
	if err != nil {
		return otpErr(err)
	}
	if entry.OwnerID != ownerID {
		// account was replaced since the code was issued
		consumeCode(ctx, cache, log, key)
		return otp.ErrNotFound
	}
	return nil
}

func consumeCode(ctx context.Context, cache *otp.Cache, log *zap.Logger, key string) {
	if err := cache.Consume(ctx, key); err != nil {
		log.Warn("Failed to consume OTP", zap.Error(err), zap.String("key", key))
	}
}

// otpErr passes typed OTP outcomes through and marks everything else as a
// store failure.
func otpErr(err error) error {
	if errors.Is(err, otp.ErrNotFound) || errors.Is(err, otp.ErrExpired) || errors.Is(err, otp.ErrMismatch) {
		return err
	}
	return storeErr(err)
}
