package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/richat-partners/staffing-api/internal/config"
	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewPublisher_DisabledIsNop(t *testing.T) {
	p, err := events.NewPublisher(&config.EventsConfig{Enabled: false}, zap.NewNop())

	require.NoError(t, err)
	assert.IsType(t, events.NopPublisher{}, p)
	assert.NoError(t, p.PublishNotification(context.Background(), events.NotificationEvent{}))
	assert.NoError(t, p.Close())
}

func TestNewPublisher_EnabledRequiresURL(t *testing.T) {
	_, err := events.NewPublisher(&config.EventsConfig{Enabled: true, Exchange: "richat.notifications"}, zap.NewNop())
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	tenderID := uint(7)
	created := time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)
	n := &domain.Notification{
		ConsultantID: 3,
		Kind:         domain.NotificationMatchValid,
		Title:        "Match validé",
		Body:         "Vous avez été retenu",
		Priority:     domain.PriorityHigh,
		TenderID:     &tenderID,
	}
	n.ID = 12
	n.CreatedAt = created

	msg, err := events.Encode(events.EventFromNotification(n))

	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "notification-12", msg.MessageId)
	assert.Equal(t, "MATCH_VALID", msg.Type)
	assert.Equal(t, created, msg.Timestamp)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, float64(12), decoded["notification_id"])
	assert.Equal(t, float64(3), decoded["consultant_id"])
	assert.Equal(t, "HIGH", decoded["priority"])
	assert.Equal(t, float64(7), decoded["tender_id"])
	assert.NotContains(t, decoded, "mission_id")
}
