package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ManuelReschke/contapp-relay/app/models"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: "3307", User: "contapp", Password: "pw", Name: "relay"})
	assert.Equal(t, "contapp:pw@tcp(db:3307)/relay?charset=utf8mb4&parseTime=True&loc=UTC", dsn)
}

func TestMigrateCreatesUserSubscriptions(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&models.UserSubscription{}))
	assert.True(t, db.Migrator().HasColumn(&models.UserSubscription{}, "paypal_subscription_id"))
	assert.True(t, db.Migrator().HasIndex(&models.UserSubscription{}, "idx_user_subscriptions_paypal_subscription_id"))
}
