package states

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"smm-bot/internal/stories/orders"
)

func TestMissingSessionReadsAsNone(t *testing.T) {
	m := NewManager()

	s := m.Get(1)
	require.Equal(t, StepNone, s.Step)
	require.Nil(t, s.SelectedService)
	require.Nil(t, s.PendingDepositAmount)
	require.Zero(t, m.Len())
}

func TestBeginDiscardsTransientFields(t *testing.T) {
	m := NewManager()

	amount := decimal.NewFromInt(50)
	m.Update(1, func(s *Session) {
		s.Step = StepOrderLink
		s.SelectedService = &orders.ServiceRef{ID: "tf1"}
		s.Quantity = 100
		s.PendingDepositAmount = &amount
		s.ReplyTarget = 9
	})
	require.Equal(t, StepOrderLink, m.Get(1).Step)

	m.Begin(1)

	s := m.Get(1)
	require.Equal(t, StepNone, s.Step)
	require.Nil(t, s.SelectedService)
	require.Zero(t, s.Quantity)
	require.Nil(t, s.PendingDepositAmount)
	require.Zero(t, s.ReplyTarget)
}

func TestGetReturnsCopy(t *testing.T) {
	m := NewManager()
	m.SetStep(1, StepOrderQuantity)

	s := m.Get(1)
	s.Step = StepAdminReply

	require.Equal(t, StepOrderQuantity, m.Get(1).Step)
}

func TestSessionsAreIsolatedPerActor(t *testing.T) {
	m := NewManager()

	var wg sync.WaitGroup
	for i := int64(1); i <= 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			m.Update(id, func(s *Session) {
				s.Step = StepOrderQuantity
				s.Quantity = id
			})
		}(i)
	}
	wg.Wait()

	require.Equal(t, 50, m.Len())
	require.Equal(t, int64(7), m.Get(7).Quantity)

	m.Clear(7)
	require.Equal(t, StepNone, m.Get(7).Step)
	require.Equal(t, 49, m.Len())
}

func TestConsumesText(t *testing.T) {
	tests := []struct {
		step Step
		want bool
	}{
		{StepNone, false},
		{StepDepositCustomAmount, true},
		{StepOrderQuantity, true},
		{StepOrderLink, true},
		{StepOrderConfirm, false},
		{StepSupportMessage, true},
		{StepAdminReply, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.step), func(t *testing.T) {
			require.Equal(t, tt.want, tt.step.ConsumesText())
		})
	}
}
