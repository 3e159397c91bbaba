package service_test

import (
	"testing"
	"time"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAdjustStock(t *testing.T) {
	t.Run("ProductNotFound", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		_, err := f.svc.AdjustStock(t.Context(), 42, 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("NegativeDeltaWithoutBalance", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		p := f.product(t, "Kettle", "10.00", true)

		_, err := f.svc.AdjustStock(t.Context(), p.ID, -1)
		assert.ErrorIs(t, err, domain.ErrInvalidState)

		bs, err := f.svc.LowStock(t.Context(), 1000)
		require.NoError(t, err)
		assert.Empty(t, bs)
	})

	t.Run("SequenceSumsDeltas", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		p := f.product(t, "Kettle", "10.00", true)

		steps := []struct {
			delta   int
			want    int
			wantErr error
		}{
			{delta: 5, want: 5},
			{delta: 3, want: 8},
			{delta: -4, want: 4},
			{delta: -10, want: 4, wantErr: domain.ErrInvalidState},
			{delta: -4, want: 0},
			{delta: 2, want: 2},
		}

		for _, step := range steps {
			b, err := f.svc.AdjustStock(t.Context(), p.ID, step.delta)
			if step.wantErr != nil {
				require.ErrorIs(t, err, step.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, step.want, b.Quantity)
			}

			bs, err := f.svc.LowStock(t.Context(), 1000)
			require.NoError(t, err)
			require.Len(t, bs, 1)
			assert.Equal(t, step.want, bs[0].Quantity)
		}

		f.stockEvents.AssertNumberOfCalls(t, "ProduceStockAdjustments", 5)
	})

	t.Run("PublishesAdjustment", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		p := f.product(t, "Kettle", "10.00", true)

		b, err := f.svc.AdjustStock(t.Context(), p.ID, 7)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), b.LastUpdated, time.Minute)

		f.stockEvents.AssertCalled(t, "ProduceStockAdjustments", mock.Anything,
			[]domain.StockAdjustment{{
				ProductID: p.ID, Delta: 7, Quantity: 7, At: b.LastUpdated,
			}},
		)
	})
}

func TestLowStock(t *testing.T) {
	f := newFixture(t, service.Config{LowStockThreshold: 5})
	qty := map[string]int{"A": 0, "B": 5, "C": 6, "D": 20}
	ids := make(map[int64]string)
	for _, name := range []string{"A", "B", "C", "D"} {
		p := f.product(t, name, "1.00", true)
		f.stock(t, p.ID, qty[name])
		ids[p.ID] = name
	}

	bs, err := f.svc.LowStock(t.Context(), 5)
	require.NoError(t, err)
	var got []string
	for _, b := range bs {
		assert.LessOrEqual(t, b.Quantity, 5)
		got = append(got, ids[b.ProductID])
	}
	assert.ElementsMatch(t, []string{"A", "B"}, got)

	byDefault, err := f.svc.LowStock(t.Context(), -1)
	require.NoError(t, err)
	assert.Equal(t, bs, byDefault)
}

func TestStockAlerts(t *testing.T) {
	f := newFixture(t, service.Config{})
	p := f.product(t, "Kettle", "10.00", true)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	err := f.svc.SaveStockAlerts(t.Context(), []domain.StockAlert{
		{ProductID: p.ID, Quantity: 3, Threshold: 5, RaisedAt: at},
		{ProductID: p.ID, Quantity: 1, Threshold: 5, RaisedAt: at.Add(time.Hour)},
	})
	require.NoError(t, err)

	alerts, err := f.svc.StockAlerts(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 1, alerts[0].Quantity)
	assert.NotZero(t, alerts[0].ID)

	all, err := f.svc.StockAlerts(t.Context(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
