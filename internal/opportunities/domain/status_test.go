package domain

import "testing"

func TestInferStatus(t *testing.T) {
	won := StatusWon
	lost := StatusLost
	open := StatusOpen
	archived := StatusArchived

	tests := []struct {
		name     string
		explicit *Status
		stage    StageFlags
		want     Status
	}{
		{"won stage", nil, StageFlags{IsWon: true}, StatusWon},
		{"lost stage", nil, StageFlags{IsLost: true}, StatusLost},
		{"open stage", nil, StageFlags{}, StatusOpen},
		{"explicit wins over won stage", &lost, StageFlags{IsWon: true}, StatusLost},
		{"explicit wins over lost stage", &won, StageFlags{IsLost: true}, StatusWon},
		{"explicit wins over open stage", &archived, StageFlags{}, StatusArchived},
		{"explicit open on won stage", &open, StageFlags{IsWon: true}, StatusOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferStatus(tt.explicit, tt.stage); got != tt.want {
				t.Errorf("InferStatus(%v, %+v) = %v, want %v", tt.explicit, tt.stage, got, tt.want)
			}
		})
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusOpen, StatusWon, StatusLost, StatusArchived} {
		if !s.Valid() {
			t.Errorf("%v should be valid", s)
		}
	}
	if Status("PENDING").Valid() {
		t.Error("PENDING should not be valid")
	}
}
