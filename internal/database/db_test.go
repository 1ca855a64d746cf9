package database

import (
	"io"
	"testing"

	"github.com/fyerfyer/tale-search/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_InMemory(t *testing.T) {
	originalDB := DB
	t.Cleanup(func() {
		_ = Close()
		DB = originalDB
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	err := Setup(&Config{Type: "sqlite", DSN: "file:setup_test?mode=memory&cache=shared"}, logger)
	require.NoError(t, err)

	db := MustDB()
	assert.True(t, db.Migrator().HasTable(&models.SearchLog{}))
}

func TestSetup_UnsupportedType(t *testing.T) {
	err := Setup(&Config{Type: "oracle"}, logrus.New())
	assert.Error(t, err)
}

func TestMustDB_Panics(t *testing.T) {
	originalDB := DB
	DB = nil
	t.Cleanup(func() { DB = originalDB })

	assert.Panics(t, func() { MustDB() })
}
