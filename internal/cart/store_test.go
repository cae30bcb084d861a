package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

type stubPersister struct {
	mu      sync.Mutex
	loaded  []domain.CartLine
	loadErr error
	saveErr error
	saved   [][]domain.CartLine
}

func (s *stubPersister) LoadCart(_ context.Context) ([]domain.CartLine, error) {
	return s.loaded, s.loadErr
}

func (s *stubPersister) SaveCart(_ context.Context, lines []domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, lines)
	return nil
}

func (s *stubPersister) last() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saved) == 0 {
		return nil
	}
	return s.saved[len(s.saved)-1]
}

func frozenClock() func() time.Time {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func wigInput(length string) LineInput {
	return LineInput{
		ProductID:      "01J9WIG",
		Name:           "Body Wave Wig",
		Price:          30000,
		OriginalPrice:  domain.Int64(35000),
		InStock:        true,
		SelectedLength: length,
	}
}

func TestAddOrIncrement(t *testing.T) {
	ctx := context.Background()
	p := &stubPersister{}
	s := NewStore(StoreDeps{Persister: p, Now: frozenClock()})

	first, err := s.AddOrIncrement(ctx, wigInput("16"))
	require.NoError(t, err)
	assert.Equal(t, "01J9WIG-16", first.ID)
	assert.Equal(t, 1, first.Quantity)

	again, err := s.AddOrIncrement(ctx, wigInput("16 inches"))
	require.NoError(t, err)
	assert.Equal(t, 2, again.Quantity)
	assert.Greater(t, again.LastUpdated, first.LastUpdated)

	_, err = s.AddOrIncrement(ctx, wigInput("18"))
	require.NoError(t, err)

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, lines, p.last())
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()
	s := NewStore(StoreDeps{Persister: &stubPersister{}})
	line, err := s.AddOrIncrement(ctx, wigInput("16"))
	require.NoError(t, err)

	require.NoError(t, s.SetQuantity(ctx, line.ID, 4))
	got, ok := s.Find(line.ID)
	require.True(t, ok)
	assert.Equal(t, 4, got.Quantity)

	require.NoError(t, s.SetQuantity(ctx, line.ID, 0))
	assert.Empty(t, s.Lines())

	assert.ErrorIs(t, s.SetQuantity(ctx, line.ID, 2), domain.ErrNotFound)
}

func TestSetQuantity_OutOfStockIgnored(t *testing.T) {
	ctx := context.Background()
	p := &stubPersister{}
	s := NewStore(StoreDeps{Persister: p})
	in := wigInput("16")
	in.InStock = false
	line, err := s.AddOrIncrement(ctx, in)
	require.NoError(t, err)
	saves := len(p.saved)

	require.NoError(t, s.SetQuantity(ctx, line.ID, 5))
	require.NoError(t, s.SetQuantity(ctx, line.ID, 0))
	got, ok := s.Find(line.ID)
	require.True(t, ok)
	assert.Equal(t, 1, got.Quantity)
	assert.Len(t, p.saved, saves)

	require.NoError(t, s.Remove(ctx, line.ID))
	assert.Empty(t, s.Lines())
	assert.ErrorIs(t, s.Remove(ctx, line.ID), domain.ErrNotFound)
}

func TestFind_ExactThenBase(t *testing.T) {
	ctx := context.Background()
	s := NewStore(StoreDeps{})
	_, err := s.AddOrIncrement(ctx, wigInput("16"))
	require.NoError(t, err)

	got, ok := s.Find("01J9WIG")
	require.True(t, ok)
	assert.Equal(t, "01J9WIG-16", got.ID)

	_, ok = s.Find("01J9OTHER")
	assert.False(t, ok)
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	p := &stubPersister{saveErr: errors.New("disk full")}
	s := NewStore(StoreDeps{Persister: p})

	_, err := s.AddOrIncrement(ctx, wigInput(""))
	require.Error(t, err)
	assert.True(t, IsNotDurable(err))
	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "add", perr.Op)
	assert.Len(t, s.Lines(), 1)
	assert.False(t, s.Persisted())

	p.mu.Lock()
	p.saveErr = nil
	p.mu.Unlock()
	require.NoError(t, s.Flush(ctx))
	assert.Len(t, p.last(), 1)
	assert.True(t, s.Persisted())
}

func TestOpen_LoadsAndNormalizes(t *testing.T) {
	p := &stubPersister{loaded: []domain.CartLine{
		{ID: "01J9WIG-16", Quantity: 2, InStock: true, LastUpdated: 5_000_000_000_000},
		{ID: "", Quantity: 1},
		{ID: "01J9BAD", Quantity: 0},
	}}
	s, err := Open(context.Background(), StoreDeps{Persister: p, Now: frozenClock()})
	require.NoError(t, err)
	require.Len(t, s.Lines(), 1)

	line, err := s.AddOrIncrement(context.Background(), wigInput("16"))
	require.NoError(t, err)
	assert.Greater(t, line.LastUpdated, int64(5_000_000_000_000))
}

func TestOpen_LoadFailure(t *testing.T) {
	p := &stubPersister{loadErr: errors.New("timeout")}
	s, err := Open(context.Background(), StoreDeps{Persister: p})
	assert.True(t, IsNotDurable(err))
	require.NotNil(t, s)
	assert.Empty(t, s.Lines())
}

func TestLines_ReturnsCopies(t *testing.T) {
	s := NewStore(StoreDeps{})
	_, err := s.AddOrIncrement(context.Background(), wigInput("16"))
	require.NoError(t, err)

	lines := s.Lines()
	lines[0].Quantity = 99
	*lines[0].OriginalPrice = 1

	again := s.Lines()
	assert.Equal(t, 1, again[0].Quantity)
	assert.Equal(t, int64(35000), *again[0].OriginalPrice)
}

func TestSubscribe_LatestSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewStore(StoreDeps{})
	ch, cancel := s.Subscribe()

	initial := <-ch
	assert.Empty(t, initial)

	_, err := s.AddOrIncrement(ctx, wigInput("16"))
	require.NoError(t, err)
	_, err = s.AddOrIncrement(ctx, wigInput("16"))
	require.NoError(t, err)

	latest := <-ch
	require.Len(t, latest, 1)
	assert.Equal(t, 2, latest[0].Quantity)

	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
}

func TestConcurrentMutationsSerialise(t *testing.T) {
	ctx := context.Background()
	s := NewStore(StoreDeps{Persister: &stubPersister{}})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.AddOrIncrement(ctx, wigInput("16"))
		}()
	}
	wg.Wait()

	got, ok := s.Find("01J9WIG-16")
	require.True(t, ok)
	assert.Equal(t, 50, got.Quantity)
}
