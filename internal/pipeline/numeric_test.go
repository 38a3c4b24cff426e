package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountCoercion(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Count
	}{
		{"number", `{"v": 240}`, 240},
		{"numeric string", `{"v": "240"}`, 240},
		{"padded string", `{"v": " 12 "}`, 12},
		{"fractional truncates", `{"v": 12.9}`, 12},
		{"empty string", `{"v": ""}`, 0},
		{"garbage", `{"v": "doce"}`, 0},
		{"null", `{"v": null}`, 0},
		{"missing", `{}`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var payload struct {
				V Count `json:"v"`
			}
			require.NoError(t, json.Unmarshal([]byte(tc.in), &payload))
			require.Equal(t, tc.want, payload.V)
		})
	}
}

func TestQuantityCoercion(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Quantity
	}{
		{"number", `{"v": 3.5}`, 3.5},
		{"numeric string", `{"v": "3.5"}`, 3.5},
		{"empty string", `{"v": ""}`, 0},
		{"garbage", `{"v": "n/a"}`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var payload struct {
				V Quantity `json:"v"`
			}
			require.NoError(t, json.Unmarshal([]byte(tc.in), &payload))
			require.Equal(t, tc.want, payload.V)
		})
	}
}
