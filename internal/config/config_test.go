package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_UnitFee(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv("SUBSCRIPTION_UNIT_FEE", "")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "5", cfg.Subscription.UnitFee.String())
	})

	t.Run("zero is kept", func(t *testing.T) {
		t.Setenv("SUBSCRIPTION_UNIT_FEE", "0")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Subscription.UnitFee.IsZero())
	})

	t.Run("negative is rejected", func(t *testing.T) {
		t.Setenv("SUBSCRIPTION_UNIT_FEE", "-1")
		_, err := Load()
		assert.ErrorContains(t, err, "negative")
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		t.Setenv("SUBSCRIPTION_UNIT_FEE", "five")
		_, err := Load()
		assert.ErrorContains(t, err, "SUBSCRIPTION_UNIT_FEE")
	})
}
