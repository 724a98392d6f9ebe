package lease

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ethpandaops/raid-crawler/internal/redis"
	redismocks "github.com/ethpandaops/raid-crawler/internal/redis/mocks"
)

func testConfig() Config {
	return Config{
		Console:       "switch-1",
		TTL:           10 * time.Second,
		RenewInterval: time.Hour,
	}
}

func newTestLease(t *testing.T, cfg Config, client redis.Client) *redisLease {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return New(logger, cfg, client).(*redisLease) //nolint:errcheck // type assertion in test
}

func TestConfig_Key(t *testing.T) {
	assert.Equal(t, "raidcrawler:lease:switch-1", testConfig().Key())
}

func TestLease_Acquire(t *testing.T) {
	tests := []struct {
		name     string
		setNX    bool
		holder   string // "self" stands for the lease's own id
		wantHeld bool
		wantErr  error
	}{
		{
			name:     "free console",
			setNX:    true,
			wantHeld: true,
		},
		{
			name:     "held by another instance",
			setNX:    false,
			holder:   "other-instance",
			wantHeld: false,
			wantErr:  ErrHeld,
		},
		{
			name:     "stale key carrying own id",
			setNX:    false,
			holder:   "self",
			wantHeld: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRedis := redismocks.NewMockClient(ctrl)
			l := newTestLease(t, testConfig(), mockRedis)

			mockRedis.EXPECT().
				SetNX(gomock.Any(), "raidcrawler:lease:switch-1", l.id, 10*time.Second).
				Return(tt.setNX, nil).
				Times(1)

			if !tt.setNX {
				holder := tt.holder
				if holder == "self" {
					holder = l.id
				}

				mockRedis.EXPECT().
					Get(gomock.Any(), "raidcrawler:lease:switch-1").
					Return(holder, nil).
					Times(1)
			}

			err := l.Acquire(context.Background())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantHeld, l.Held())

			if l.Held() {
				mockRedis.EXPECT().
					CompareAndDelete(gomock.Any(), "raidcrawler:lease:switch-1", l.id).
					Return(true, nil)

				require.NoError(t, l.Release(context.Background()))
			}
		})
	}
}

func TestLease_AcquireTwiceIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRedis := redismocks.NewMockClient(ctrl)
	l := newTestLease(t, testConfig(), mockRedis)

	mockRedis.EXPECT().SetNX(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).Times(1)

	require.NoError(t, l.Acquire(context.Background()))
	require.NoError(t, l.Acquire(context.Background()))

	mockRedis.EXPECT().CompareAndDelete(gomock.Any(), gomock.Any(), l.id).Return(true, nil)
	require.NoError(t, l.Release(context.Background()))
}

func TestLease_ReleaseTakenOverSkipsDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRedis := redismocks.NewMockClient(ctrl)
	l := newTestLease(t, testConfig(), mockRedis)

	mockRedis.EXPECT().SetNX(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	require.NoError(t, l.Acquire(context.Background()))

	mockRedis.EXPECT().CompareAndDelete(gomock.Any(), gomock.Any(), l.id).Return(false, nil)

	require.NoError(t, l.Release(context.Background()))
	assert.False(t, l.Held())
}

func TestLease_ReleaseWithoutAcquire(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l := newTestLease(t, testConfig(), redismocks.NewMockClient(ctrl))

	require.NoError(t, l.Release(context.Background()))
}

func TestLease_Renew(t *testing.T) {
	tests := []struct {
		name    string
		renewed bool
		err     error
		want    bool
	}{
		{name: "still holder", renewed: true, want: true},
		{name: "taken over", renewed: false, want: false},
		{name: "redis error", err: assert.AnError, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRedis := redismocks.NewMockClient(ctrl)
			l := newTestLease(t, testConfig(), mockRedis)

			mockRedis.EXPECT().
				CompareAndExpire(gomock.Any(), "raidcrawler:lease:switch-1", l.id, 10*time.Second).
				Return(tt.renewed, tt.err)

			assert.Equal(t, tt.want, l.renew(context.Background()))
		})
	}
}

func TestLease_LostWhenRenewFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := testConfig()
	cfg.RenewInterval = 20 * time.Millisecond

	mockRedis := redismocks.NewMockClient(ctrl)
	l := newTestLease(t, cfg, mockRedis)

	mockRedis.EXPECT().SetNX(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	mockRedis.EXPECT().
		CompareAndExpire(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(false, assert.AnError).
		AnyTimes()

	require.NoError(t, l.Acquire(context.Background()))

	select {
	case <-l.Lost():
	case <-time.After(2 * time.Second):
		t.Fatal("lease was not reported lost")
	}

	assert.False(t, l.Held())
}

func TestLease_TwoInstancesAgainstRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client := redis.NewClient(logger, redis.Config{Address: mr.Addr(), DialTimeout: time.Second, PoolSize: 2})
	require.NoError(t, client.Start(context.Background()))

	defer client.Stop() //nolint:errcheck // test cleanup

	ctx := context.Background()
	first := New(logger, testConfig(), client)
	second := New(logger, testConfig(), client)

	require.NoError(t, first.Acquire(ctx))
	require.ErrorIs(t, second.Acquire(ctx), ErrHeld)

	// Releasing a key that another instance now holds leaves it alone.
	require.NoError(t, mr.Set("raidcrawler:lease:switch-1", "intruder"))
	require.NoError(t, first.Release(ctx))
	assert.True(t, mr.Exists("raidcrawler:lease:switch-1"))

	mr.Del("raidcrawler:lease:switch-1")

	require.NoError(t, second.Acquire(ctx))
	assert.True(t, second.Held())
	require.NoError(t, second.Release(ctx))
	assert.False(t, mr.Exists("raidcrawler:lease:switch-1"))
}

func TestLocal(t *testing.T) {
	var l Lease = Local{}

	require.NoError(t, l.Acquire(context.Background()))
	assert.True(t, l.Held())
	assert.Nil(t, l.Lost())
	require.NoError(t, l.Release(context.Background()))
}
