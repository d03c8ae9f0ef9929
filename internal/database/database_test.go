package database

import (
	"testing"

	"dutydesk/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestFlushAllCaches_NoClients(t *testing.T) {
	// Seed flushes before any cache client exists in tests; unconnected
	// clients are skipped rather than flushed.
	db := &DB{log: logger.New("database")}

	assert.NoError(t, db.FlushAllCaches())
}

func TestClose_NoConnections(t *testing.T) {
	db := &DB{log: logger.New("database")}

	assert.NoError(t, db.Close())
}
