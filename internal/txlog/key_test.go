package txlog

import (
	"errors"
	"testing"
)

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		id        string
		want      string
		wantErr   bool
	}{
		{
			name:      "full precision timestamp",
			timestamp: "2025-12-16T20:23:36.201957Z",
			id:        "abc-123.xyz",
			want:      "logs/2025/12/16/transaction_abc-123_xyz",
		},
		{
			name:      "date only",
			timestamp: "2024-01-05",
			id:        "abc",
			want:      "logs/2024/01/05/transaction_abc",
		},
		{
			name:      "explicit offset",
			timestamp: "2025-12-16T20:23:36+00:00",
			id:        "abc",
			want:      "logs/2025/12/16/transaction_abc",
		},
		{
			name:      "space separated",
			timestamp: "2025-06-01 08:00:00",
			id:        "abc",
			want:      "logs/2025/06/01/transaction_abc",
		},
		{
			name:      "garbage timestamp",
			timestamp: "yesterday-ish",
			id:        "abc",
			wantErr:   true,
		},
		{
			name:      "empty timestamp",
			timestamp: "",
			id:        "abc",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveKey(tt.timestamp, tt.id)
			if tt.wantErr {
				if !errors.Is(err, ErrUnparsableTimestamp) {
					t.Fatalf("error = %v, want ErrUnparsableTimestamp", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DeriveKey failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("DeriveKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
