package events

import (
	"testing"

	"dutydesk/config"

	"github.com/stretchr/testify/assert"
)

func TestPublishOverdueAlertSkipsCleanSweep(t *testing.T) {
	// No client is wired up; a clean sweep must return before publishing.
	eb := New(nil, config.Config{})

	assert.NoError(t, eb.PublishOverdueAlert(0, 3))
}
