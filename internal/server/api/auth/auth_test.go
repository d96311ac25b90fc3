package auth_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/gamecontrol/internal/server/api/auth"
)

func TestGenerateKey(t *testing.T) {
	re := regexp.MustCompile(`^[0-9A-Za-z]{16}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		key, err := auth.GenerateKey()
		require.NoError(t, err)
		assert.Regexp(t, re, key)
		seen[key] = true
	}
	assert.Len(t, seen, 50)
}

func TestDeriveKey(t *testing.T) {
	type testCase struct {
		name     string
		password string
		wantErr  bool
	}
	cases := []testCase{
		{name: "empty", password: "", wantErr: true},
		{name: "short", password: "a"},
		{name: "generated", password: "Zq81mPw0Lk3sXa9B"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := auth.DeriveKey(tc.password)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, key, 32)
			again, err := auth.DeriveKey(tc.password)
			require.NoError(t, err)
			assert.Equal(t, key, again)
		})
	}

	a, _ := auth.DeriveKey("one")
	b, _ := auth.DeriveKey("two")
	assert.NotEqual(t, a, b)
}
