package statestore_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/guildboard/guildboard/server/statestore"
)

func TestStore_SingleUse(t *testing.T) {
	s := statestore.New(10*time.Minute, 100, 0.1, 0)
	defer s.Close()

	state, err := s.Generate()
	require.NoError(t, err)
	require.NotEmpty(t, state)

	require.True(t, s.ValidateAndConsume(state))
	// Second presentation of the same value always fails.
	require.False(t, s.ValidateAndConsume(state))
}

func TestStore_UnknownStateRejected(t *testing.T) {
	s := statestore.New(10*time.Minute, 100, 0.1, 0)
	defer s.Close()

	require.False(t, s.ValidateAndConsume("never-issued"))
	require.False(t, s.ValidateAndConsume(""))
}

func TestStore_ExpiredStateRejected(t *testing.T) {
	s := statestore.New(10*time.Minute, 100, 0.1, 0)
	defer s.Close()

	state, err := s.Generate()
	require.NoError(t, err)

	statestore.NowTimeFunc = func() time.Time { return time.Now().Add(11 * time.Minute) }
	defer func() { statestore.NowTimeFunc = time.Now }()

	require.False(t, s.ValidateAndConsume(state))
	// Expiry check still consumed the entry.
	require.False(t, s.ValidateAndConsume(state))
}

func TestStore_CapacityEvictsOldest(t *testing.T) {
	s := statestore.New(10*time.Minute, 10, 0.1, 0)
	defer s.Close()

	states := make([]string, 0, 11)
	for i := 0; i < 11; i++ {
		state, err := s.Generate()
		require.NoError(t, err)
		states = append(states, state)
	}

	// The 11th generation evicted the oldest unconsumed state.
	require.False(t, s.ValidateAndConsume(states[0]))
	for _, state := range states[1:] {
		require.True(t, s.ValidateAndConsume(state))
	}
}

func TestStore_SweepRemovesExpired(t *testing.T) {
	s := statestore.New(10*time.Minute, 100, 0.1, 0)
	defer s.Close()

	for i := 0; i < 5; i++ {
		_, err := s.Generate()
		require.NoError(t, err)
	}
	require.Equal(t, 5, s.Len())

	statestore.NowTimeFunc = func() time.Time { return time.Now().Add(11 * time.Minute) }
	defer func() { statestore.NowTimeFunc = time.Now }()

	s.Sweep()
	require.Equal(t, 0, s.Len())
}

func TestStore_ConcurrentConsumptionHasOneWinner(t *testing.T) {
	s := statestore.New(10*time.Minute, 100, 0.1, 0)
	defer s.Close()

	state, err := s.Generate()
	require.NoError(t, err)

	const racers = 32
	var wg sync.WaitGroup
	wins := make(chan bool, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.ValidateAndConsume(state) {
				wins <- true
			}
		}()
	}
	wg.Wait()
	close(wins)

	require.Len(t, wins, 1)
}
