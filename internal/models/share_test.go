package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShareLinkStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		expiresAt *time.Time
		revokedAt *time.Time
		want      LinkStatus
	}{
		{"permanent", nil, nil, LinkActive},
		{"not yet expired", &future, nil, LinkActive},
		{"expired", &past, nil, LinkExpired},
		{"revoked", nil, &past, LinkRevoked},
		{"revoked wins over expiry", &past, &past, LinkRevoked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := ShareLink{ExpiresAt: tt.expiresAt, RevokedAt: tt.revokedAt}
			assert.Equal(t, tt.want, l.Status(now))
		})
	}
}
