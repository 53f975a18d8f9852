package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsernamePattern(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid simple", "alice", false},
		{"valid with digits and underscore", "bob_42", false},
		{"valid at max length", "a2345678901234567890", false},
		{"too short", "ab", true},
		{"too long", "a23456789012345678901", true},
		{"starts with digit", "1alice", true},
		{"starts with underscore", "_alice", true},
		{"invalid characters", "alice!", true},
		{"reserved word", "admin", true},
		{"reserved word case insensitive", "Admin", true},
		{"reserved guest", "guest", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateUsernamePattern(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUsernameFromEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"plain local part", "alice@campus.edu", "alice"},
		{"dots become underscores", "jane.doe@campus.edu", "jane_doe"},
		{"dashes become underscores", "li-wei@campus.edu", "li_wei"},
		{"plus tag dropped", "bob+spam@campus.edu", "bobspam"},
		{"leading digit gets prefix", "2024zhang@campus.edu", "cr_2024zhang"},
		{"too short gets prefix", "ed@campus.edu", "cr_ed"},
		{"reserved gets prefix", "admin@campus.edu", "cr_admin"},
		{"long local part truncated", "extraordinarily.long.name@campus.edu", "extraordinarily_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usernameFromEmail(tt.email)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, validateUsernamePattern(got))
		})
	}
}
