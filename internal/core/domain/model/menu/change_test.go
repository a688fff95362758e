package menu_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/menu"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChange(t *testing.T) {
	changedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("should build a keyed change", func(t *testing.T) {
		c, err := menu.NewChange(" butcher-1 ", "ribeye", "Ribeye", 42.5, true, changedAt)

		require.NoError(t, err)
		assert.Equal(t, "butcher-1:ribeye", c.Key())
		assert.Equal(t, 42.5, c.PurchasePrice)
		assert.True(t, c.Available)
	})

	t.Run("should collect every missing field", func(t *testing.T) {
		_, err := menu.NewChange("", "", "", -1, false, changedAt)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "menuItemId")
	})
}
