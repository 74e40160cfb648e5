package cascade

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticFetch(options ...Option) FetchFunc {
	return func(_ context.Context, _ string) ([]Option, error) {
		return options, nil
	}
}

func vendorChain(coreFetch FetchFunc) []Link {
	return []Link{
		{Field: "vendor", Fetch: staticFetch(Option{Value: "V-1", Label: "Vendor One"})},
		{Field: "core_business", Fetch: coreFetch},
		{Field: "sub_core_business", Fetch: staticFetch()},
		{Field: "contract", Fetch: staticFetch()},
	}
}

func TestLoader_LoadRootEnablesFirstField(t *testing.T) {
	loader := NewLoader(vendorChain(staticFetch()), nil)

	loader.LoadRoot(context.Background())
	loader.Wait()

	state, err := loader.State(0)
	require.NoError(t, err)
	assert.True(t, state.Enabled)
	assert.Len(t, state.Options, 1)
}

func TestLoader_ChangePopulatesChild(t *testing.T) {
	fetched := make([]string, 0, 1)
	coreFetch := func(_ context.Context, parentValue string) ([]Option, error) {
		fetched = append(fetched, parentValue)

		return []Option{{Value: "CB-1", Label: "Core One"}}, nil
	}

	loader := NewLoader(vendorChain(coreFetch), nil)

	require.NoError(t, loader.OnFieldChanged(context.Background(), 0, "V-1"))
	loader.Wait()

	assert.Equal(t, []string{"V-1"}, fetched)

	state, err := loader.State(1)
	require.NoError(t, err)
	assert.True(t, state.Enabled)
	assert.Equal(t, []Option{{Value: "CB-1", Label: "Core One"}}, state.Options)
}

func TestLoader_ChangeClearsDownstream(t *testing.T) {
	loader := NewLoader(vendorChain(staticFetch(Option{Value: "CB-1"})), nil)
	ctx := context.Background()

	require.NoError(t, loader.OnFieldChanged(ctx, 0, "V-1"))
	loader.Wait()
	require.NoError(t, loader.OnFieldChanged(ctx, 1, "CB-1"))
	loader.Wait()

	// Changing the root again clears and disables everything below it.
	require.NoError(t, loader.OnFieldChanged(ctx, 0, "V-2"))
	loader.Wait()

	states := loader.States()
	assert.Empty(t, states[1].Value)
	assert.Empty(t, states[2].Value)
	assert.False(t, states[2].Enabled)
	assert.False(t, states[3].Enabled)
}

func TestLoader_StaleResponseDiscarded(t *testing.T) {
	// Vendor changes to V1, then to V2 before V1's core-business fetch
	// resolves. Only V2's list may ever be shown.
	release := make(chan struct{})
	coreFetch := func(_ context.Context, parentValue string) ([]Option, error) {
		if parentValue == "V-1" {
			<-release // V1 is the slow response

			return []Option{{Value: "CB-stale"}}, nil
		}

		return []Option{{Value: "CB-fresh"}}, nil
	}

	loader := NewLoader(vendorChain(coreFetch), nil)
	ctx := context.Background()

	require.NoError(t, loader.OnFieldChanged(ctx, 0, "V-1"))
	require.NoError(t, loader.OnFieldChanged(ctx, 0, "V-2"))

	close(release)
	loader.Wait()

	state, err := loader.State(1)
	require.NoError(t, err)
	require.Len(t, state.Options, 1)
	assert.Equal(t, "CB-fresh", state.Options[0].Value)
}

func TestLoader_InFlightRequestReused(t *testing.T) {
	var calls atomic.Int32

	started := make(chan struct{}, 2)
	release := make(chan struct{})
	coreFetch := func(_ context.Context, _ string) ([]Option, error) {
		calls.Add(1)
		started <- struct{}{}
		<-release

		return []Option{{Value: "CB-1"}}, nil
	}

	loader := NewLoader(vendorChain(coreFetch), nil)
	ctx := context.Background()

	require.NoError(t, loader.OnFieldChanged(ctx, 0, "V-1"))
	<-started

	// Same field, same parent value, fetch still outstanding: join it.
	require.NoError(t, loader.OnFieldChanged(ctx, 0, "V-1"))

	close(release)
	loader.Wait()

	assert.Equal(t, int32(1), calls.Load())

	state, err := loader.State(1)
	require.NoError(t, err)
	assert.True(t, state.Enabled)
	assert.Len(t, state.Options, 1)
}

func TestLoader_ChangeBackToInFlightValueStillApplies(t *testing.T) {
	release := make(chan struct{})
	coreFetch := func(_ context.Context, parentValue string) ([]Option, error) {
		if parentValue == "V-1" {
			<-release

			return []Option{{Value: "CB-for-V1"}}, nil
		}

		return []Option{{Value: "CB-for-V2"}}, nil
	}

	loader := NewLoader(vendorChain(coreFetch), nil)
	ctx := context.Background()

	require.NoError(t, loader.OnFieldChanged(ctx, 0, "V-1"))
	require.NoError(t, loader.OnFieldChanged(ctx, 0, "V-2"))
	require.NoError(t, loader.OnFieldChanged(ctx, 0, "V-1"))

	close(release)
	loader.Wait()

	state, err := loader.State(1)
	require.NoError(t, err)
	require.Len(t, state.Options, 1)
	assert.Equal(t, "CB-for-V1", state.Options[0].Value)
}

func TestLoader_FetchFailureScopedToField(t *testing.T) {
	coreFetch := func(_ context.Context, _ string) ([]Option, error) {
		return nil, errors.New("backend unavailable")
	}

	loader := NewLoader(vendorChain(coreFetch), nil)
	ctx := context.Background()

	require.NoError(t, loader.OnFieldChanged(ctx, 0, "V-1"))
	loader.Wait()

	states := loader.States()
	assert.True(t, states[1].Failed)
	assert.False(t, states[1].Enabled)
	assert.False(t, states[2].Failed, "failure must stay scoped to the fetched field")

	// The root keeps its value; nothing was discarded.
	assert.Equal(t, "V-1", states[0].Value)
}

func TestLoader_RetryAfterFailure(t *testing.T) {
	var calls atomic.Int32

	coreFetch := func(_ context.Context, _ string) ([]Option, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("timeout")
		}

		return []Option{{Value: "CB-1"}}, nil
	}

	loader := NewLoader(vendorChain(coreFetch), nil)
	ctx := context.Background()

	require.NoError(t, loader.OnFieldChanged(ctx, 0, "V-1"))
	loader.Wait()

	// Re-triggering the same action retries the fetch.
	require.NoError(t, loader.OnFieldChanged(ctx, 0, "V-1"))
	loader.Wait()

	state, err := loader.State(1)
	require.NoError(t, err)
	assert.True(t, state.Enabled)
	assert.False(t, state.Failed)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLoader_DisabledFieldRejectsChange(t *testing.T) {
	loader := NewLoader(vendorChain(staticFetch()), nil)

	err := loader.OnFieldChanged(context.Background(), 2, "SCB-1")

	assert.ErrorIs(t, err, ErrFieldDisabled)
}

func TestLoader_UnknownIndex(t *testing.T) {
	loader := NewLoader(vendorChain(staticFetch()), nil)

	assert.ErrorIs(t, loader.OnFieldChanged(context.Background(), 9, "x"), ErrUnknownField)

	_, err := loader.State(-1)
	assert.ErrorIs(t, err, ErrUnknownField)
}
