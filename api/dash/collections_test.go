package dash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPos(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]interface{}
		want string
		nil_ bool
	}{
		{name: "preferred key", doc: map[string]interface{}{"POS_Amt": 125000.5}, want: "125000.5"},
		{name: "spaced key", doc: map[string]interface{}{"POS Amt": "98000"}, want: "98000"},
		{name: "bare POS", doc: map[string]interface{}{"POS": 500.0}, want: "500"},
		{name: "key priority order", doc: map[string]interface{}{"POS_Amt": 1.0, "POS": 2.0}, want: "1"},
		{name: "case-insensitive fallback", doc: map[string]interface{}{"pOs_AmT": "42"}, want: "42"},
		{name: "comma-grouped string", doc: map[string]interface{}{"POS Amt": "1,25,000"}, want: "125000"},
		{name: "blank string skipped", doc: map[string]interface{}{"POS_Amt": "  "}, nil_: true},
		{name: "no pos field", doc: map[string]interface{}{"EMI": 100.0}, nil_: true},
		{name: "nil document", doc: nil, nil_: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractPos(tt.doc)
			if tt.nil_ {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDecodeDoc(t *testing.T) {
	assert.Nil(t, decodeDoc(nil))
	assert.Nil(t, decodeDoc([]byte("not json")))
	doc := decodeDoc([]byte(`{"POS_Amt": 10}`))
	require.NotNil(t, doc)
	assert.Equal(t, 10.0, doc["POS_Amt"])
}
