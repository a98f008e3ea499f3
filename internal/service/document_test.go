package service

import "testing"

func TestValidateSignature(t *testing.T) {
	valid := "data:image/png;base64,aGVsbG8="

	tests := []struct {
		name      string
		signature string
		x, y      float64
		wantErr   bool
	}{
		{"valid", valid, 0.5, 0.5, false},
		{"position at origin", valid, 0, 0, false},
		{"position at far corner", valid, 1, 1, false},
		{"missing data url prefix", "aGVsbG8=", 0.5, 0.5, true},
		{"jpeg data url rejected", "data:image/jpeg;base64,aGVsbG8=", 0.5, 0.5, true},
		{"empty image", "data:image/png;base64,", 0.5, 0.5, true},
		{"not base64", "data:image/png;base64,!!!not-base64!!!", 0.5, 0.5, true},
		{"x below range", valid, -0.1, 0.5, true},
		{"x above range", valid, 1.1, 0.5, true},
		{"y below range", valid, 0.5, -0.1, true},
		{"y above range", valid, 0.5, 1.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignature(tt.signature, tt.x, tt.y)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSignature() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
