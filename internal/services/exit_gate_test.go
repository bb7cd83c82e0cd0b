package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruralpay/investflow/internal/models"
)

func TestExitGate(t *testing.T) {
	t.Run("resume stays put", func(t *testing.T) {
		g := NewExitGate()
		g.Open(models.Dashboard())
		assert.True(t, g.IsOpen())

		g.Resume()
		assert.False(t, g.IsOpen())
		_, open := g.Pending()
		assert.False(t, open)
	})

	t.Run("learn more asks for scroll to top", func(t *testing.T) {
		g := NewExitGate()
		g.Open(models.Dashboard())
		assert.True(t, g.LearnMore())
		assert.False(t, g.IsOpen())
	})

	t.Run("leave anyway returns destination", func(t *testing.T) {
		g := NewExitGate()
		dest := models.ScreenRoute(models.ScreenInvestProducts)
		g.Open(dest)

		pending, open := g.Pending()
		assert.True(t, open)
		assert.Equal(t, dest, pending)

		got, err := g.LeaveAnyway()
		require.NoError(t, err)
		assert.Equal(t, dest, got)
		assert.False(t, g.IsOpen())
	})

	t.Run("leave anyway needs an open gate", func(t *testing.T) {
		_, err := NewExitGate().LeaveAnyway()
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}
