package service

import (
	"testing"
	"time"
)

func TestGenerateOffer(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		year      int
		condition string
		want      string
	}{
		{"current year good", 2026, "good", "6500"},
		{"five years old good", 2021, "good", "4750"},
		{"five years old excellent", 2021, "excellent", "5462.5"},
		{"five years old fair", 2021, "fair", "3800"},
		{"five years old poor", 2021, "poor", "2850"},
		{"unknown condition prices as good", 2021, "showroom", "4750"},
		{"empty condition prices as good", 2021, "", "4750"},
		{"old enough to hit the floor", 1990, "good", "250"},
		{"floor then poor multiple", 1990, "poor", "150"},
		{"future model year is not negative age", 2027, "good", "6500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, expiry := GenerateOffer(tt.year, tt.condition, now)
			if amount.String() != tt.want {
				t.Errorf("GenerateOffer(%d, %q) amount = %s, want %s", tt.year, tt.condition, amount, tt.want)
			}
			if wantExpiry := now.AddDate(0, 0, 7); !expiry.Equal(wantExpiry) {
				t.Errorf("expiry = %v, want %v", expiry, wantExpiry)
			}
		})
	}
}

func TestGenerateOfferDeterministic(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	first, _ := GenerateOffer(2019, "fair", now)
	second, _ := GenerateOffer(2019, "fair", now)
	if !first.Equal(second) {
		t.Errorf("same input produced different offers: %s vs %s", first, second)
	}
}
