// Package broadcast sends officer announcements to citizen-facing channels.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gavalink/internal/audit"
	"gavalink/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Channel carries published broadcasts to delivery workers.
const Channel = "gavalink:broadcasts"

var ErrInvalidArgument = errors.New("broadcast: invalid argument")

type Broadcast struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Message string `json:"message"`

	// DeliveryChannel selects how recipients are reached.
	DeliveryChannel DeliveryChannel `json:"delivery_channel"`
	// TargetGroup selects who receives it (citizens, officers, all).
	TargetGroup string `json:"target_group"`

	SentBy string    `json:"sent_by"`
	SentAt time.Time `json:"sent_at"`
}

type DeliveryChannel string

const (
	ChannelSMS   DeliveryChannel = "sms"
	ChannelEmail DeliveryChannel = "email"
	ChannelInApp DeliveryChannel = "in_app"
	ChannelAll   DeliveryChannel = "all-channels"
)

// Publisher hands a broadcast to the delivery fan-out.
type Publisher interface {
	Publish(ctx context.Context, b Broadcast) error
}

// Service validates and publishes officer broadcasts, recording each send in
// the audit trail.
type Service struct {
	pub   Publisher
	audit *audit.Service
	clock func() time.Time
}

func NewService(pub Publisher, auditSvc *audit.Service) *Service {
	return &Service{pub: pub, audit: auditSvc, clock: time.Now}
}

type SendRequest struct {
	Subject         string          `json:"subject"`
	Message         string          `json:"message"`
	DeliveryChannel DeliveryChannel `json:"delivery_channel"`
	TargetGroup     string          `json:"target_group"`
}

func (s *Service) Send(ctx context.Context, officerID, officerRole string, req SendRequest) (Broadcast, error) {
	if officerID == "" || req.Subject == "" || req.Message == "" || req.TargetGroup == "" {
		return Broadcast{}, ErrInvalidArgument
	}
	switch req.DeliveryChannel {
	case ChannelSMS, ChannelEmail, ChannelInApp, ChannelAll:
	default:
		return Broadcast{}, ErrInvalidArgument
	}

	b := Broadcast{
		ID:              uuid.NewString(),
		Subject:         req.Subject,
		Message:         req.Message,
		DeliveryChannel: req.DeliveryChannel,
		TargetGroup:     req.TargetGroup,
		SentBy:          officerID,
		SentAt:          s.clock().UTC(),
	}
	if err := s.pub.Publish(ctx, b); err != nil {
		return Broadcast{}, err
	}

	if s.audit != nil {
		if aerr := s.audit.LogBroadcast(ctx, officerID, officerRole, b.ID, b.TargetGroup); aerr != nil {
			logger.From(ctx).Warn("audit append failed", "err", aerr)
		}
	}
	return b, nil
}

// RedisPublisher fans broadcasts out over Redis pub/sub.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, b Broadcast) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, Channel, payload).Err()
}
