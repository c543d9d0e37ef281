package actions

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	tests := []struct {
		action Action
		token  string
	}{
		{Menu(), "menu"},
		{Deposit(), "dep"},
		{Amount(decimal.NewFromInt(50)), "amt:50"},
		{CustomAmount(), "amt:custom"},
		{Pay("USDT"), "pay:USDT"},
		{Paid("D01J9Z3M6X8W2Q4B7N5C1V0K3T"), "paid:D01J9Z3M6X8W2Q4B7N5C1V0K3T"},
		{Approve("D1"), "appr:D1"},
		{Reject("D1"), "rej:D1"},
		{Services(), "svc"},
		{Platform("Telegram"), "plat:Telegram"},
		{Category("Telegram", "Premium"), "cat:Telegram:Premium"},
		{Service("tp1"), "svc:tp1"},
		{Buy(), "buy"},
		{MyOrders(), "orders"},
		{Support(), "support"},
		{Reply(12345), "arep:12345"},
		{Admin(), "adm"},
		{AdminUsers(), "adm:users"},
		{AdminDeposits(), "adm:deps"},
		{AdminOrders(), "adm:orders"},
		{SetStatus(StatusProcessing, "O1"), "st:proc:O1"},
		{SetStatus(StatusRejected, "O1"), "st:rej:O1"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			require.Equal(t, tt.token, tt.action.Encode())

			parsed, err := Parse(tt.token)
			require.NoError(t, err)
			require.Equal(t, tt.action.Kind, parsed.Kind)
			require.Equal(t, tt.token, parsed.Encode())
			require.LessOrEqual(t, len(tt.token), 64)
		})
	}
}

func TestParseRejectsUnknownTokens(t *testing.T) {
	for _, token := range []string{
		"",
		"nope",
		"pay_USDT",
		"pay:",
		"amt:-5",
		"amt:abc",
		"cat:Telegram",
		"arep:abc",
		"adm:secrets",
		"st:done:O1",
		"st:proc",
	} {
		t.Run(token, func(t *testing.T) {
			_, err := Parse(token)
			require.Error(t, err)
		})
	}
}

func TestAdminOnly(t *testing.T) {
	require.True(t, KindApprove.AdminOnly())
	require.True(t, KindSetStatus.AdminOnly())
	require.True(t, KindReply.AdminOnly())
	require.False(t, KindPaid.AdminOnly())
	require.False(t, KindBuy.AdminOnly())
}
