package config_test

import (
	"testing"

	"vendicraft/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load(viper.New())

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "+221781562041", cfg.OwnerWhatsAppNumber)
	assert.Equal(t, "FCFA", cfg.CurrencySuffix)
	assert.Equal(t, "fr", cfg.MessageLocale)
	assert.Equal(t, "VendiCraft", cfg.StoreName)
	assert.False(t, cfg.RabbitMQEnabled)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("OWNER_WHATSAPP_NUMBER", "+33600000000")
	t.Setenv("CLOUDINARY_BASE_URL", "http://localhost:9999/")
	t.Setenv("RABBITMQ_ENABLED", "true")

	cfg := config.Load(viper.New())

	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "+33600000000", cfg.OwnerWhatsAppNumber)
	assert.Equal(t, "http://localhost:9999", cfg.CloudinaryBaseURL)
	assert.True(t, cfg.RabbitMQEnabled)
}
