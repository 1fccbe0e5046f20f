package archive

import (
	"strings"
	"testing"
	"time"
)

func TestObjectPath(t *testing.T) {
	at := time.Date(2026, 2, 3, 23, 0, 0, 0, time.FixedZone("x", -5*3600))
	tests := []struct {
		name     string
		provider string
		id       string
		want     string
	}{
		{"plain", "stripe", "evt_123", "webhooks/stripe/2026/02/04/evt_123.json"},
		{"slash", "nctr-live", "a/b c", "webhooks/nctr-live/2026/02/04/a_b_c.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ObjectPath(tt.provider, tt.id, at); got != tt.want {
				t.Fatalf("got=%s want=%s", got, tt.want)
			}
		})
	}
	if got := ObjectPath("free-trial", "", at); !strings.HasPrefix(got, "webhooks/free-trial/2026/02/04/") {
		t.Fatalf("unexpected generated path %s", got)
	}
}
