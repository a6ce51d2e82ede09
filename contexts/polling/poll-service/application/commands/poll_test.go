package commands

import (
	"errors"
	"testing"

	domainerrors "ballotbox/contexts/polling/poll-service/domain/errors"
)

func TestNormalizeChoiceTexts(t *testing.T) {
	cases := []struct {
		name    string
		input   []string
		want    []string
		wantErr bool
	}{
		{"trims and keeps order", []string{" Red ", "Blue"}, []string{"Red", "Blue"}, false},
		{"drops blanks", []string{"Red", "   ", "Blue"}, []string{"Red", "Blue"}, false},
		{"too few after trimming", []string{"Red", "  "}, nil, true},
		{"duplicate after trimming", []string{"Red", " Red "}, nil, true},
		{"empty input", nil, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeChoiceTexts(tc.input)
			if tc.wantErr {
				if !errors.Is(err, domainerrors.ErrInvalidPollInput) {
					t.Fatalf("expected ErrInvalidPollInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}
