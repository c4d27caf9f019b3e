package we_test

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weegigs/wee-counter-go/stores/memory"
	"github.com/weegigs/wee-counter-go/we"
)

type tally struct {
	Total int `json:"total"`
}

const addType = we.ActionType("tally/ADD")

type add struct {
	Amount int `json:"amount"`
}

func (add) ActionType() we.ActionType {
	return addType
}

func reduceTally(state *tally, action we.Action) *tally {
	if state == nil {
		state = &tally{}
	}

	switch a := action.(type) {
	case add:
		return &tally{Total: state.Total + a.Amount}
	default:
		return state
	}
}

var tallySlice = we.Slice[tally]{
	Name:     "tally",
	Reduce:   reduceTally,
	Decoders: we.Decoders{addType: we.JsonDecoder[add]{}},
}

func remoteAdd(amount string) we.RemoteAction {
	return we.RemoteAction{Type: addType, Payload: we.JsonData([]byte(`{"amount":` + amount + `}`))}
}

func rendersHistory(t *testing.T) {
	ctx := context.Background()
	log := memory.NewActionLog()
	id := we.SliceId{Type: "tally", Key: "render"}

	err := log.Append(ctx, id, we.Options(), add{Amount: 2}, we.RemoteAction{Type: "other/THING"}, remoteAdd("5"))
	if !assert.Nil(t, err) {
		return
	}

	history, err := log.Load(ctx, id)
	if !assert.Nil(t, err) {
		return
	}

	renderer := we.Renderer[tally]{Slice: tallySlice}
	snapshot, err := renderer.Render(ctx, history)
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, tally{Total: 7}, *snapshot.State)
	assert.Equal(t, history.Revision, snapshot.Revision)
	assert.Equal(t, "tally", snapshot.Type)
	assert.True(t, snapshot.Initialized())
}

func rendersEmptyHistoryAsInitial(t *testing.T) {
	renderer := we.Renderer[tally]{Slice: tallySlice}
	snapshot, err := renderer.Render(context.Background(), we.History{Id: we.SliceId{Type: "tally", Key: "empty"}, Revision: we.InitialRevision})
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, tally{}, *snapshot.State)
	assert.False(t, snapshot.Initialized())
}

func renderFailsOnCorruptHistory(t *testing.T) {
	history := we.History{
		Id: we.SliceId{Type: "tally", Key: "corrupt"},
		Actions: []we.RecordedAction{
			{ActionType: addType, Data: we.Data{Encoding: "text/plain", Data: []byte("two")}},
		},
	}

	renderer := we.Renderer[tally]{Slice: tallySlice}
	_, err := renderer.Render(context.Background(), history)

	var invalid *we.InvalidEncodingError
	assert.ErrorAs(t, err, &invalid)
}

func TestRenderer(t *testing.T) {
	t.Run("renders history", rendersHistory)
	t.Run("renders an empty history as the initial state", rendersEmptyHistoryAsInitial)
	t.Run("fails on corrupt history", renderFailsOnCorruptHistory)
}

func storeNotifiesOnChange(t *testing.T) {
	ctx := context.Background()
	store := we.NewStore(tallySlice)

	calls := 0
	unsubscribe := store.Subscribe(func(state tally) { calls++ })

	_, err := store.Dispatch(ctx, add{Amount: 3})
	assert.Nil(t, err)
	_, err = store.Dispatch(ctx, we.RemoteAction{Type: "other/THING"})
	assert.Nil(t, err)
	assert.Equal(t, 1, calls)

	unsubscribe()
	state, err := store.Dispatch(ctx, remoteAdd("4"))
	assert.Nil(t, err)
	assert.Equal(t, tally{Total: 7}, state)
	assert.Equal(t, 1, calls)
}

func storeStartsFromGivenState(t *testing.T) {
	store := we.NewStore(tallySlice, we.WithState(tally{Total: 40}))

	state, err := store.Dispatch(context.Background(), add{Amount: 2})
	assert.Nil(t, err)
	assert.Equal(t, tally{Total: 42}, state)
}

func storeRejectsUndecodableActions(t *testing.T) {
	store := we.NewStore(tallySlice)

	_, err := store.Dispatch(context.Background(), remoteAdd(`"many"`))

	var notDecoded *we.ActionNotDecodedError
	assert.ErrorAs(t, err, &notDecoded)
	assert.Equal(t, tally{}, store.State())
}

func storeSerialisesDispatches(t *testing.T) {
	ctx := context.Background()
	store := we.NewStore(tallySlice)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Dispatch(ctx, add{Amount: 1})
		}()
	}
	wg.Wait()

	assert.Equal(t, tally{Total: 50}, store.State())
}

func storeNotifiesInCommitOrder(t *testing.T) {
	ctx := context.Background()
	store := we.NewStore(tallySlice)

	var seen []int
	store.Subscribe(func(state tally) {
		// widen the window between commit and delivery
		runtime.Gosched()
		seen = append(seen, state.Total)
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Dispatch(ctx, add{Amount: 1})
		}()
	}
	wg.Wait()

	if assert.Len(t, seen, 100) {
		for i, total := range seen {
			assert.Equal(t, i+1, total)
		}
	}
	assert.Equal(t, tally{Total: 100}, store.State())
}

func subscribersCanReadTheStore(t *testing.T) {
	ctx := context.Background()
	store := we.NewStore(tallySlice)

	var mu sync.Mutex
	var latest []tally
	store.Subscribe(func(tally) {
		state := store.State()
		mu.Lock()
		latest = append(latest, state)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Dispatch(ctx, add{Amount: 1})
		}()
	}
	wg.Wait()

	assert.Len(t, latest, 20)
}

func TestStore(t *testing.T) {
	t.Run("notifies subscribers on change", storeNotifiesOnChange)
	t.Run("starts from given state", storeStartsFromGivenState)
	t.Run("rejects undecodable actions", storeRejectsUndecodableActions)
	t.Run("serialises dispatches", storeSerialisesDispatches)
	t.Run("notifies in commit order", storeNotifiesInCommitOrder)
	t.Run("subscribers can read the store", subscribersCanReadTheStore)
}

type conflictingLog struct {
	*memory.ActionLog
	conflicts int
	appends   int
}

func (l *conflictingLog) Append(ctx context.Context, id we.SliceId, options we.AppendOptions, actions ...we.Action) error {
	l.appends++
	if l.conflicts > 0 {
		l.conflicts--
		return we.RevisionConflict
	}

	return l.ActionLog.Append(ctx, id, options, actions...)
}

func serviceAppendsAndReloads(t *testing.T) {
	ctx := context.Background()
	log := memory.NewActionLog()
	service := we.NewSliceService(log, tallySlice)
	id := we.SliceId{Type: "tally", Key: "service"}

	snapshot, err := service.Dispatch(ctx, id, remoteAdd("3"))
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, tally{Total: 3}, *snapshot.State)
	assert.True(t, snapshot.Initialized())

	history, err := log.Load(ctx, id)
	if assert.Nil(t, err) && assert.Len(t, history.Actions, 1) {
		assert.Equal(t, addType, history.Actions[0].ActionType)
		assert.Equal(t, history.Revision, snapshot.Revision)
	}
}

func serviceSkipsIdentity(t *testing.T) {
	ctx := context.Background()
	log := memory.NewActionLog()
	service := we.NewSliceService(log, tallySlice)
	id := we.SliceId{Type: "tally", Key: "identity"}

	snapshot, err := service.Dispatch(ctx, id, we.RemoteAction{Type: "other/THING"})
	if !assert.Nil(t, err) {
		return
	}

	assert.False(t, snapshot.Initialized())
	assert.Equal(t, tally{}, *snapshot.State)

	history, err := log.Load(ctx, id)
	if assert.Nil(t, err) {
		assert.Empty(t, history.Actions)
	}
}

func serviceRetriesConflicts(t *testing.T) {
	ctx := context.Background()
	log := &conflictingLog{ActionLog: memory.NewActionLog(), conflicts: 2}
	service := we.NewSliceService(log, tallySlice)
	id := we.SliceId{Type: "tally", Key: "retry"}

	snapshot, err := service.Dispatch(ctx, id, add{Amount: 1})
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, 3, log.appends)
	assert.Equal(t, tally{Total: 1}, *snapshot.State)
}

func serviceGivesUpOnPersistentConflicts(t *testing.T) {
	ctx := context.Background()
	log := &conflictingLog{ActionLog: memory.NewActionLog(), conflicts: 10}
	service := we.NewSliceService(log, tallySlice, we.ConflictRetries(2))

	_, err := service.Dispatch(ctx, we.SliceId{Type: "tally", Key: "conflict"}, add{Amount: 1})

	assert.True(t, errors.Is(err, we.RevisionConflict))
	assert.Equal(t, 2, log.appends)
}

func serviceStopsRetryingWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	log := &conflictingLog{ActionLog: memory.NewActionLog(), conflicts: 100}
	service := we.NewSliceService(log, tallySlice, we.ConflictRetries(100))

	_, err := service.Dispatch(ctx, we.SliceId{Type: "tally", Key: "cancelled"}, add{Amount: 1})

	assert.Error(t, err)
	assert.Equal(t, 1, log.appends)
}

func TestSliceService(t *testing.T) {
	t.Run("appends and reloads", serviceAppendsAndReloads)
	t.Run("skips identity dispatches", serviceSkipsIdentity)
	t.Run("retries revision conflicts", serviceRetriesConflicts)
	t.Run("gives up on persistent conflicts", serviceGivesUpOnPersistentConflicts)
	t.Run("stops retrying when cancelled", serviceStopsRetryingWhenCancelled)
}
