package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"productpulse/internal/shared/testutil"
	"productpulse/internal/storage"
	"productpulse/pkg/contracts/domain"
)

// MockBroadcaster records hub broadcasts
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(ctx context.Context, messageType string, data interface{}) {
	m.Called(ctx, messageType, data)
}

// MockRowFetcher stands in for the Google Sheets client
type MockRowFetcher struct {
	mock.Mock
}

func (m *MockRowFetcher) FetchRows(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	args := m.Called(ctx, spreadsheetID, readRange)
	rows, _ := args.Get(0).([][]string)
	return rows, args.Error(1)
}

// failingStore rejects every write
type failingStore struct {
	storage.Store
}

var errDiskFull = errors.New("disk full")

func (failingStore) ReplaceAll(context.Context, domain.Dataset) error {
	return errDiskFull
}

// inventoryGrid renders the workbook header and rows as cell strings
func inventoryGrid(rows ...[]any) [][]string {
	all := append([][]any{testutil.InventoryHeader}, rows...)
	grid := make([][]string, 0, len(all))
	for _, row := range all {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		grid = append(grid, cells)
	}
	return grid
}

// gatedStore holds the first ReplaceAll after it has written, until release
// is closed. Later writes signal on entered and pass straight through.
type gatedStore struct {
	*storage.MemoryStore
	persisted chan struct{}
	release   chan struct{}
	entered   chan struct{}
	calls     atomic.Int32
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		MemoryStore: storage.NewMemoryStore(),
		persisted:   make(chan struct{}),
		release:     make(chan struct{}),
		entered:     make(chan struct{}, 8),
	}
}

func (g *gatedStore) ReplaceAll(ctx context.Context, ds domain.Dataset) error {
	first := g.calls.Add(1) == 1
	if !first {
		g.entered <- struct{}{}
	}
	if err := g.MemoryStore.ReplaceAll(ctx, ds); err != nil {
		return err
	}
	if first {
		close(g.persisted)
		<-g.release
	}
	return nil
}
