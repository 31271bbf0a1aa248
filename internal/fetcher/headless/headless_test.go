package headless

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNoopRendererFailsNavigation(t *testing.T) {
	t.Parallel()

	renderer, err := NewNoop().NewRenderer(context.Background())
	require.NoError(t, err)
	defer renderer.Close()

	require.Error(t, renderer.Navigate(context.Background(), "https://campus.test/profiles/alice"))

	text, err := renderer.VisibleText(context.Background())
	require.NoError(t, err)
	require.Empty(t, text)
	require.NoError(t, renderer.Settle(context.Background(), time.Millisecond))
}

func TestSessionSettle(t *testing.T) {
	t.Parallel()

	s := &session{}

	require.NoError(t, s.Settle(context.Background(), 0))
	require.NoError(t, s.Settle(context.Background(), -time.Second))

	start := time.Now()
	require.NoError(t, s.Settle(context.Background(), 20*time.Millisecond))
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Settle(ctx, time.Minute), context.Canceled)
}

func TestNewFactoryAppliesTimeoutDefault(t *testing.T) {
	t.Parallel()

	f := NewFactory(Config{})
	defer f.Close()
	require.Equal(t, 45*time.Second, f.cfg.NavigationTimeout)
}

func TestForwardCancel(t *testing.T) {
	t.Parallel()

	t.Run("propagates parent cancellation", func(t *testing.T) {
		t.Parallel()
		parent, cancelParent := context.WithCancel(context.Background())
		child, cancelChild := context.WithCancel(context.Background())
		defer cancelChild()

		stop := forwardCancel(parent, cancelChild)
		defer stop()
		cancelParent()

		select {
		case <-child.Done():
		case <-time.After(time.Second):
			t.Fatal("child was not canceled")
		}
	})

	t.Run("stop detaches the child", func(t *testing.T) {
		t.Parallel()
		parent, cancelParent := context.WithCancel(context.Background())
		child, cancelChild := context.WithCancel(context.Background())
		defer cancelChild()

		stop := forwardCancel(parent, cancelChild)
		stop()
		cancelParent()

		select {
		case <-child.Done():
			t.Fatal("child canceled after stop")
		case <-time.After(50 * time.Millisecond):
		}
	})
}
