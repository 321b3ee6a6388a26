package oracle

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"raffler/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// fulfillAttempts bounds the callback retries covering the window between a
// request being submitted and its transaction committing.
const fulfillAttempts = 5

// Local is an in-process randomness oracle for development and testing. It
// honors the request/callback shape of a real oracle network: requests are
// acknowledged with an id immediately and fulfilled asynchronously after a
// simulated confirmation delay. Randomness is derived from a per-process
// secret key, so it is unpredictable to callers but reproducible within a
// fulfillment (the proof commits to the same input).
type Local struct {
	blockTime time.Duration

	mu        sync.RWMutex
	fulfiller Fulfiller
	key       [32]byte

	wg     sync.WaitGroup
	done   chan struct{}
	closed bool
}

// NewLocal creates a local oracle. blockTime is the simulated confirmation
// time per block of confirmation depth.
func NewLocal(blockTime time.Duration) (*Local, error) {
	o := &Local{
		blockTime: blockTime,
		done:      make(chan struct{}),
	}
	if _, err := rand.Read(o.key[:]); err != nil {
		return nil, fmt.Errorf("failed to generate oracle key: %w", err)
	}
	return o, nil
}

// SetFulfiller wires the callback target. Must be called before the first
// request is submitted.
func (o *Local) SetFulfiller(f Fulfiller) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fulfiller = f
}

// RequestRandomness submits a request and schedules its fulfillment after
// the confirmation delay implied by the requested confirmation depth
func (o *Local) RequestRandomness(ctx context.Context, spec models.RandomnessSpec) (string, error) {
	o.mu.RLock()
	fulfiller := o.fulfiller
	closed := o.closed
	o.mu.RUnlock()

	if closed {
		return "", fmt.Errorf("oracle is closed")
	}
	if fulfiller == nil {
		return "", fmt.Errorf("oracle has no fulfiller configured")
	}
	if spec.NumValues <= 0 {
		return "", fmt.Errorf("randomness spec must request at least one value")
	}

	requestID := uuid.NewString()
	delay := time.Duration(spec.ConfirmationDepth) * o.blockTime

	o.wg.Add(1)
	go o.fulfill(fulfiller, requestID, spec.NumValues, delay)

	log.WithFields(log.Fields{
		"request_id":         requestID,
		"confirmation_depth": spec.ConfirmationDepth,
		"delay":              delay,
	}).Debug("Randomness request accepted")

	return requestID, nil
}

// fulfill delivers the callback after the confirmation delay. Delivery is
// at-least-once: a callback arriving before the requesting transaction has
// committed is rejected as unknown and retried.
func (o *Local) fulfill(fulfiller Fulfiller, requestID string, numValues int, delay time.Duration) {
	defer o.wg.Done()

	select {
	case <-time.After(delay):
	case <-o.done:
		return
	}

	values := o.derive(requestID, numValues)

	for attempt := 1; attempt <= fulfillAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		_, err := fulfiller.FulfillRandomness(ctx, requestID, values)
		cancel()

		if err == nil {
			return
		}
		if !errors.Is(err, models.ErrUnknownRequest) || attempt == fulfillAttempts {
			log.WithFields(log.Fields{
				"request_id": requestID,
				"attempt":    attempt,
			}).WithError(err).Error("Randomness fulfillment failed")
			return
		}

		select {
		case <-time.After(o.blockTime):
		case <-o.done:
			return
		}
	}
}

// derive computes the random values for a request from the oracle key
func (o *Local) derive(requestID string, numValues int) []uint64 {
	values := make([]uint64, numValues)
	for i := range values {
		h := sha256.New()
		h.Write(o.key[:])
		h.Write([]byte(requestID))
		var nonce [8]byte
		binary.BigEndian.PutUint64(nonce[:], uint64(i))
		h.Write(nonce[:])
		sum := h.Sum(nil)
		values[i] = binary.BigEndian.Uint64(sum[:8])
	}
	return values
}

// Close stops pending fulfillments and waits for in-flight callbacks
func (o *Local) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	close(o.done)
	o.mu.Unlock()

	o.wg.Wait()
}
