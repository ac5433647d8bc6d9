package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserContextRoundTrip(t *testing.T) {
	_, ok := UserFrom(context.Background())
	require.False(t, ok)

	ctx := WithUser(context.Background(), User{ID: "u1", Username: "minji"})
	user, ok := UserFrom(ctx)
	require.True(t, ok)
	require.Equal(t, "u1", user.ID)
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "김민지", User{Name: " 김민지 ", Username: "minji"}.DisplayName())
	require.Equal(t, "minji", User{Username: "minji"}.DisplayName())
	require.Equal(t, "익명 고객", User{}.DisplayName())
}
