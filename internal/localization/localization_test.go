package localization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	s, err := NewService("en")
	require.NoError(t, err)

	tests := []struct {
		name   string
		lang   string
		key    string
		params map[string]interface{}
		want   string
	}{
		{
			name:   "placeholders",
			lang:   "en",
			key:    "deposit.approved_user",
			params: map[string]interface{}{"balance": "50.00"},
			want:   "✅ Deposit Approved! Balance: $50.00",
		},
		{
			name: "values are not expanded again",
			lang: "en",
			key:  "support.admin_message",
			params: map[string]interface{}{
				"name":    "{{text}}",
				"user_id": 7,
				"text":    "call me at {{user_id}} or {{name}}",
			},
			want: "💬 Support Message\nFrom: {{text}} (7)\ncall me at {{user_id}} or {{name}}",
		},
		{
			name: "nested key",
			lang: "en",
			key:  "order.status.rejected",
			want: "Rejected",
		},
		{
			name: "unknown language falls back",
			lang: "xx",
			key:  "order.none",
			want: "📦 No orders yet.",
		},
		{
			name: "missing key returns key",
			lang: "en",
			key:  "order.nope",
			want: "order.nope",
		},
		{
			name: "section is not a string",
			lang: "en",
			key:  "order",
			want: "order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, s.Get(tt.lang, tt.key, tt.params))
		})
	}
}

func TestUnknownFallbackFails(t *testing.T) {
	_, err := NewService("zz")
	require.Error(t, err)
}
