package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level), recorded
}

func loanQuery() (string, int64) {
	return `SELECT * FROM "loans" WHERE status = 'ACTIVE'`, 3
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Info)

	lowered := gl.LogMode(gormlogger.Warn)

	clone, ok := lowered.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, clone.level)
	// the original keeps its level
	assert.Equal(t, gormlogger.Info, gl.level)
}

func TestGormLogger_Levels(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Info)

	gl.Info(context.Background(), "migrated %d loans", 7)
	gl.Warn(context.Background(), "retrying lock on loan %s", "L-1")
	gl.Error(context.Background(), "constraint violated")

	logs := recorded.All()
	require.Len(t, logs, 3)
	assert.Contains(t, logs[0].Message, "migrated 7 loans")
	assert.Equal(t, zapcore.WarnLevel, logs[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs[2].Level)
}

func TestGormLogger_SilentSuppressesEverything(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Silent)

	gl.Info(context.Background(), "hidden")
	gl.Trace(context.Background(), time.Now(), loanQuery, nil)

	assert.Empty(t, recorded.All())
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("statement error logged with sql", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), loanQuery, errors.New("deadlock detected"))

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "sql error", logs[0].Message)
	})

	t.Run("record not found is not an error", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), loanQuery, gormlogger.ErrRecordNotFound)

		assert.Empty(t, recorded.All())
	})

	t.Run("slow statement warned", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Warn)

		began := time.Now().Add(-time.Second)
		gl.Trace(context.Background(), began, loanQuery, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "slow query")
	})

	t.Run("normal statement logged at debug", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Info)

		gl.Trace(context.Background(), time.Now(), loanQuery, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "query", logs[0].Message)
		assert.Equal(t, zapcore.DebugLevel, logs[0].Level)
	})

	t.Run("request id carried from context", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Info)

		ctx := WithRequestID(context.Background(), "req-9")
		gl.Trace(ctx, time.Now(), loanQuery, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		var found bool
		for _, f := range logs[0].Context {
			if f.Key == "request_id" {
				found = true
				assert.Equal(t, "req-9", f.String)
			}
		}
		assert.True(t, found)
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"bogus", gormlogger.Warn},
		{"", gormlogger.Warn},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, MapGormLogLevel(tt.level), tt.level)
	}
}

var _ gormlogger.Interface = (*GormLogger)(nil)
