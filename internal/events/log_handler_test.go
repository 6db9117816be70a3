package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/account-service/internal/events"
	"github.com/phrazzld/account-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogHandler_WritesAuditLine(t *testing.T) {
	log, buf := logger.NewCapture()
	handler := events.NewLogHandler(log)

	accountID := uuid.New()
	event := events.NewAccountEvent(events.AccountRoleChanged, accountID,
		time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		map[string]string{"from": "USER", "to": "MANAGER"})

	require.NoError(t, handler.HandleEvent(context.Background(), event))

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "account event", entry["msg"])
	assert.Equal(t, "audit", entry["component"])
	assert.Equal(t, events.AccountRoleChanged, entry["event_type"])
	assert.Equal(t, accountID.String(), entry["account_id"])
	assert.Equal(t, "2024-03-01T10:00:00Z", entry["occurred_at"])

	attrs, ok := entry["attributes"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "USER", attrs["from"])
	assert.Equal(t, "MANAGER", attrs["to"])
}
