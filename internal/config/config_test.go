package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVendorSeed(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		vendors, err := ParseVendorSeed("")
		require.NoError(t, err)
		assert.Empty(t, vendors)
	})

	t.Run("TwoEntries", func(t *testing.T) {
		vendors, err := ParseVendorSeed("Snack Bar|http://agent-1:5000|s1; Coffee | http://agent-2:5000 | s2 ;")
		require.NoError(t, err)
		require.Len(t, vendors, 2)
		assert.Equal(t, "Snack Bar", vendors[0].Name)
		assert.Equal(t, "http://agent-1:5000", vendors[0].AgentURL)
		assert.Equal(t, "s1", vendors[0].Secret)
		assert.Equal(t, "Coffee", vendors[1].Name)
		assert.Equal(t, "s2", vendors[1].Secret)
	})

	t.Run("MissingField", func(t *testing.T) {
		_, err := ParseVendorSeed("Snack Bar|http://agent-1:5000")
		assert.Error(t, err)
	})

	t.Run("BlankField", func(t *testing.T) {
		_, err := ParseVendorSeed("Snack Bar||s1")
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("SESSION_TTL", "")
		t.Setenv("AGENT_TIMEOUT", "")
		t.Setenv("VENDOR_SEED", "")
		t.Setenv("BARCODE_IMAGE_URL", "")
		t.Setenv("KAFKA_BROKER", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
		assert.Equal(t, 10*time.Second, cfg.AgentTimeout)
		assert.Equal(t, DefaultBarcodeImageURL, cfg.BarcodeImageURL)
		assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	})

	t.Run("MissingSecret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("BadDuration", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("AGENT_TIMEOUT", "soon")
		_, err := Load()
		assert.Error(t, err)
	})
}
