package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "beanpos-test",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, provider)

	assert.False(t, provider.IsEnabled())
	assert.NoError(t, provider.ForceFlush(ctx))
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestNewLoggerProvider_Enabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "beanpos-test",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, provider)

	assert.True(t, provider.IsEnabled())

	// no collector is listening, shutdown may report an export failure
	_ = provider.Shutdown(ctx)
}

func TestNewZapOTELCore(t *testing.T) {
	t.Run("nil provider yields no-op core", func(t *testing.T) {
		core := NewZapOTELCore(ZapBridgeConfig{ServiceName: "beanpos-test"})
		assert.False(t, core.Enabled(zapcore.ErrorLevel))
	})

	t.Run("disabled provider yields no-op core", func(t *testing.T) {
		provider, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())
		require.NoError(t, err)

		core := NewZapOTELCore(ZapBridgeConfig{
			ServiceName:    "beanpos-test",
			LoggerProvider: provider,
		})
		assert.False(t, core.Enabled(zapcore.ErrorLevel))
	})

	t.Run("level caps the bridge", func(t *testing.T) {
		lp := &LoggerProvider{
			provider: sdklog.NewLoggerProvider(),
			logger:   zap.NewNop(),
			config:   LogsConfig{Enabled: true},
		}
		t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })

		core := NewZapOTELCore(ZapBridgeConfig{
			ServiceName:    "beanpos-test",
			LoggerProvider: lp,
			Level:          zapcore.WarnLevel,
		})

		assert.False(t, core.Enabled(zapcore.InfoLevel))
		assert.True(t, core.Enabled(zapcore.WarnLevel))
		assert.True(t, core.Enabled(zapcore.ErrorLevel))
	})
}

func TestLevelFilterCore(t *testing.T) {
	obsCore, logs := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: obsCore, minLevel: zapcore.WarnLevel}
	log := zap.New(filtered)

	log.Info("Restock recorded")
	log.Warn("Stock went negative")
	log.Error("Deduction failed")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Stock went negative", entries[0].Message)
	assert.Equal(t, "Deduction failed", entries[1].Message)
}

func TestLevelFilterCore_WithKeepsFilter(t *testing.T) {
	obsCore, logs := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: obsCore, minLevel: zapcore.WarnLevel}

	log := zap.New(filtered).With(zap.String("branch_id", "b7f9d3ce"))
	log.Debug("ignored")
	log.Warn("Threshold crossed")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "b7f9d3ce", entries[0].ContextMap()["branch_id"])
}

func TestAttachOTELCore(t *testing.T) {
	baseCore, baseLogs := observer.New(zapcore.InfoLevel)
	bridgeCore, bridgeLogs := observer.New(zapcore.InfoLevel)

	log := AttachOTELCore(zap.New(baseCore), bridgeCore)
	log.Info("Order deduction applied", zap.String("order_id", "ord-1"))

	require.Len(t, baseLogs.All(), 1)
	require.Len(t, bridgeLogs.All(), 1)
	assert.Equal(t, "Order deduction applied", bridgeLogs.All()[0].Message)
}
