package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daemonp/unii2mqtt/internal/config"
	"github.com/daemonp/unii2mqtt/internal/log"
	"github.com/daemonp/unii2mqtt/internal/panel"
	"github.com/daemonp/unii2mqtt/internal/types"
)

// The panel handshake fires callbacks before Connect has created the broker
// client; publishing must be a no-op then, not a nil dereference.
func TestPublishBeforeBrokerConnect(t *testing.T) {
	logger := log.NewLogger("error")
	cfg := &config.Config{}
	cfg.UNii.Host = "127.0.0.1"

	p, err := panel.NewPanel(cfg, logger)
	require.NoError(t, err)

	m := NewMQTT(&cfg.MQTT, p, logger)

	assert.NotPanics(t, func() {
		m.PublishSectionStatus(&types.Section{Number: 1, Name: "Home", ArmedState: types.SectionDisarmed})
		m.PublishInputStatus(&types.Input{Number: 1, Name: "Hall PIR"})
		m.publishPanelConnection(true)
	})
}
