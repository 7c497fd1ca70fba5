package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet3d-backend/internal/lock"
)

func newRedisLocker(t *testing.T) (*lock.RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	l, err := lock.NewRedisLocker(client, "test:lock", 5*time.Second)
	require.NoError(t, err)
	return l, mr
}

func assertMutualExclusion(t *testing.T, l lock.Locker) {
	t.Helper()
	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Lock(context.Background(), "model:1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxSeen))
}

func TestRedisLockerKeyLayout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	l, err := lock.NewRedisLocker(client, "pet3d:lock:", 5*time.Second)
	require.NoError(t, err)

	release, err := l.Lock(context.Background(), "order:42")
	require.NoError(t, err)
	assert.Equal(t, []string{"pet3d:lock:order:42"}, mr.Keys())
	release()
	assert.Empty(t, mr.Keys())
}

func TestLocalLockerMutualExclusion(t *testing.T) {
	l := lock.NewLocalLocker()
	assertMutualExclusion(t, l)
	assert.Equal(t, 0, l.Len())
}

func TestLocalLockerDistinctKeys(t *testing.T) {
	l := lock.NewLocalLocker()
	releaseA, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	releaseB, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	releaseB()
}

func TestLocalLockerContextCancel(t *testing.T) {
	l := lock.NewLocalLocker()
	release, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "k")
	assert.ErrorIs(t, err, lock.ErrNotAcquired)

	release()
	release()
	assert.Equal(t, 0, l.Len())
}

func TestRedisLockerMutualExclusion(t *testing.T) {
	l, _ := newRedisLocker(t)
	assertMutualExclusion(t, l)
}

func TestRedisLockerReleaseOnlyOwnToken(t *testing.T) {
	l, mr := newRedisLocker(t)

	release, err := l.Lock(context.Background(), "order:1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:order:1"))

	// Simulate expiry and takeover by another holder.
	mr.Set("test:lock:order:1", "someone-else")
	release()
	got, err := mr.Get("test:lock:order:1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisLockerTimesOut(t *testing.T) {
	l, _ := newRedisLocker(t)
	release, err := l.Lock(context.Background(), "order:2")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "order:2")
	assert.ErrorIs(t, err, lock.ErrNotAcquired)
}

func TestNewRedisLockerValidation(t *testing.T) {
	_, err := lock.NewRedisLocker(nil, "", time.Second)
	assert.Error(t, err)
}
