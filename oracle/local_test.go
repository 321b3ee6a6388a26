package oracle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"raffler/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingFulfiller captures callbacks and can fail a configured number of
// times before accepting
type recordingFulfiller struct {
	mu       sync.Mutex
	calls    []fulfillCall
	failures int
	failWith error
	accepted chan fulfillCall
}

type fulfillCall struct {
	requestID string
	values    []uint64
}

func newRecordingFulfiller() *recordingFulfiller {
	return &recordingFulfiller{
		accepted: make(chan fulfillCall, 10),
	}
}

func (f *recordingFulfiller) FulfillRandomness(ctx context.Context, requestID string, randomValues []uint64) (*models.RoundResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fulfillCall{requestID: requestID, values: randomValues})
	if f.failures > 0 {
		f.failures--
		err := f.failWith
		f.mu.Unlock()
		return nil, err
	}
	f.mu.Unlock()

	f.accepted <- fulfillCall{requestID: requestID, values: randomValues}
	return &models.RoundResult{RequestID: requestID}, nil
}

func (f *recordingFulfiller) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testSpec() models.RandomnessSpec {
	return models.RandomnessSpec{
		SubscriptionID:    "sub-1",
		PriorityClass:     "standard",
		ConfirmationDepth: 1,
		CallbackBudget:    500000,
		NumValues:         models.NumRandomValues,
	}
}

func TestLocal_RequestRandomness_DeliversCallback(t *testing.T) {
	oracle, err := NewLocal(5 * time.Millisecond)
	require.NoError(t, err)
	defer oracle.Close()

	fulfiller := newRecordingFulfiller()
	oracle.SetFulfiller(fulfiller)

	requestID, err := oracle.RequestRandomness(context.Background(), testSpec())
	require.NoError(t, err)
	assert.NotEmpty(t, requestID)

	select {
	case call := <-fulfiller.accepted:
		assert.Equal(t, requestID, call.requestID)
		assert.Len(t, call.values, models.NumRandomValues)
	case <-time.After(2 * time.Second):
		t.Fatal("Callback was not delivered within timeout")
	}
}

func TestLocal_RequestRandomness_DistinctRequestIDs(t *testing.T) {
	oracle, err := NewLocal(time.Millisecond)
	require.NoError(t, err)
	defer oracle.Close()

	fulfiller := newRecordingFulfiller()
	oracle.SetFulfiller(fulfiller)

	first, err := oracle.RequestRandomness(context.Background(), testSpec())
	require.NoError(t, err)
	second, err := oracle.RequestRandomness(context.Background(), testSpec())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLocal_Fulfill_RetriesOnUnknownRequest(t *testing.T) {
	oracle, err := NewLocal(time.Millisecond)
	require.NoError(t, err)
	defer oracle.Close()

	// The callback races the requesting transaction's commit; the first two
	// attempts find the request not yet recorded
	fulfiller := newRecordingFulfiller()
	fulfiller.failWith = models.ErrUnknownRequest
	fulfiller.failures = 2
	oracle.SetFulfiller(fulfiller)

	requestID, err := oracle.RequestRandomness(context.Background(), testSpec())
	require.NoError(t, err)

	select {
	case call := <-fulfiller.accepted:
		assert.Equal(t, requestID, call.requestID)
	case <-time.After(2 * time.Second):
		t.Fatal("Callback was not delivered within timeout")
	}

	assert.Equal(t, 3, fulfiller.callCount())

	// All attempts must carry identical values
	fulfiller.mu.Lock()
	defer fulfiller.mu.Unlock()
	for _, call := range fulfiller.calls {
		assert.Equal(t, fulfiller.calls[0].values, call.values)
	}
}

func TestLocal_Fulfill_GivesUpOnPersistentError(t *testing.T) {
	oracle, err := NewLocal(time.Millisecond)
	require.NoError(t, err)
	defer oracle.Close()

	fulfiller := newRecordingFulfiller()
	fulfiller.failWith = errors.New("database down")
	fulfiller.failures = 100
	oracle.SetFulfiller(fulfiller)

	_, err = oracle.RequestRandomness(context.Background(), testSpec())
	require.NoError(t, err)

	// A non-retryable error stops after the first attempt
	select {
	case <-fulfiller.accepted:
		t.Fatal("Callback should not have been accepted")
	case <-time.After(200 * time.Millisecond):
	}
	assert.Equal(t, 1, fulfiller.callCount())
}

func TestLocal_RequestRandomness_Validation(t *testing.T) {
	oracle, err := NewLocal(time.Millisecond)
	require.NoError(t, err)
	defer oracle.Close()

	// No fulfiller wired yet
	_, err = oracle.RequestRandomness(context.Background(), testSpec())
	assert.Error(t, err)

	oracle.SetFulfiller(newRecordingFulfiller())

	// Zero values requested
	spec := testSpec()
	spec.NumValues = 0
	_, err = oracle.RequestRandomness(context.Background(), spec)
	assert.Error(t, err)
}

func TestLocal_Close(t *testing.T) {
	oracle, err := NewLocal(time.Millisecond)
	require.NoError(t, err)

	fulfiller := newRecordingFulfiller()
	oracle.SetFulfiller(fulfiller)

	oracle.Close()

	_, err = oracle.RequestRandomness(context.Background(), testSpec())
	assert.Error(t, err)

	// Closing twice is safe
	oracle.Close()
}
