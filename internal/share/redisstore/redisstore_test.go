package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/pinfall/internal/share"
	"github.com/starford/pinfall/internal/testutil"
)

func TestStore_PutGetExpiry(t *testing.T) {
	mr, client := testutil.TestRedis(t)
	ctx := context.Background()
	s := New(client, "link:")

	require.NoError(t, s.Put(ctx, "abc", `{"url":"x"}`, time.Hour))
	assert.True(t, mr.Exists("link:abc"))

	v, found, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"url":"x"}`, v)

	mr.FastForward(2 * time.Hour)
	_, found, err = s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_GetError(t *testing.T) {
	mr, client := testutil.TestRedis(t)
	s := New(client, "")
	mr.Close()

	_, _, err := s.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestStream_Write(t *testing.T) {
	_, client := testutil.TestRedis(t)
	ctx := context.Background()
	st := NewStream(client, "", 0)

	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.Write(ctx, share.ClickEvent{
		Name: share.ClickEventName, Token: "tok", Channel: "sms", Campaign: "share", Unique: true, Timestamp: ts,
	}))

	msgs, err := client.XRange(ctx, DefaultStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "tok", msgs[0].Values["token"])
	assert.Equal(t, "1", msgs[0].Values["unique"])
	assert.Equal(t, "sms", msgs[0].Values["channel"])
}
