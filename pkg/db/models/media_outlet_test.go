package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMediaOutletPrice(t *testing.T) {
	tests := []struct {
		name   string
		outlet  MediaOutlet
		want    string
	}{
		{
			name:   "standard",
			outlet: MediaOutlet{BasePrice: decimal.RequireFromString("1000"), PriorityMultiplier: decimal.RequireFromString("1.2")},
			want:   "1200",
		},
		{
			name:   "premium",
			outlet: MediaOutlet{BasePrice: decimal.RequireFromString("5000"), PriorityMultiplier: decimal.RequireFromString("1.5"), IsPremium: true},
			want:   "11250",
		},
		{
			name:   "rounds to cents",
			outlet: MediaOutlet{BasePrice: decimal.RequireFromString("33.33"), PriorityMultiplier: decimal.RequireFromString("1.1"), IsPremium: true},
			want:   "54.99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.outlet.Price().Equal(decimal.RequireFromString(tt.want)), "got %s", tt.outlet.Price())
		})
	}
}
