package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanstork/notifications/internal/models"
)

func TestDecodeSettingsToleratesOlderDocuments(t *testing.T) {
	key := models.UserKey("u1")

	s, err := decodeSettings(key, []byte(`{"version":1}`))
	require.NoError(t, err)
	assert.Equal(t, key, s.Key)
	assert.NotNil(t, s.Channels)
	for _, ch := range models.AllChannels {
		assert.True(t, s.IsChannelEnabled(ch))
	}

	s, err = decodeSettings(key, []byte(`{"version":1,"channels":{"push":{"status":"disabled"}},"future_field":[1,2]}`))
	require.NoError(t, err)
	assert.False(t, s.IsChannelEnabled(models.ChannelPush))
}

func TestDecodeSettingsRejectsGarbage(t *testing.T) {
	_, err := decodeSettings(models.UserKey("u1"), []byte(`not json`))
	assert.Error(t, err)
}

func TestEncodeSettingsStampsVersion(t *testing.T) {
	raw, err := encodeSettings(models.NewNotificationSettings(models.AccountKey("a1")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1}`, string(raw))
}
