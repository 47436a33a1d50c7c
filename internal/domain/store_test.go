package domain

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteknight/neoknight/internal/graph"
	"github.com/whiteknight/neoknight/internal/query"
	"github.com/whiteknight/neoknight/internal/repository"
	"github.com/whiteknight/neoknight/internal/translator"
)

type recordingExecutor struct {
	runs []string
}

func (r *recordingExecutor) Query(context.Context, graph.Query) (*graph.Result, error) {
	return &graph.Result{}, nil
}

func (r *recordingExecutor) Run(_ context.Context, command string, _ map[string]any) error {
	r.runs = append(r.runs, command)
	return nil
}

func TestSampleData(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := SampleData(3, 2, 4, now)
	b := SampleData(3, 2, 4, now)

	require.Len(t, a, 3)
	assert.Equal(t, a[1].CustomerID, b[1].CustomerID, "ids are deterministic")
	assert.Len(t, a[2].Orders, 2)
	assert.Len(t, a[2].Addresses, 4)
	assert.Equal(t, a[2].CustomerID, a[2].Orders[1].CustomerID)
	assert.NotEqual(t, a[0].CustomerID, a[1].CustomerID)
}

func TestSeed(t *testing.T) {
	exec := &recordingExecutor{}
	store, err := NewStore(repository.Features{Executor: exec})
	require.NoError(t, err)

	sum, err := store.Seed(context.Background(), SampleData(2, 3, 1, time.Now()))
	require.NoError(t, err)

	assert.Equal(t, SeedSummary{Customers: 2, Orders: 6, Addresses: 2, Relationships: 14}, sum)
	assert.Len(t, exec.runs, 2+6+6+2+2)
	assert.True(t, strings.HasPrefix(exec.runs[0], "MERGE (a:Customer { CustomerId: $customerid }) SET "))
	assert.Equal(t, linkOrder, exec.runs[2])
}

func TestNavigation(t *testing.T) {
	tr, err := translator.New[Customer](nil)
	require.NoError(t, err)

	testCases := []struct {
		name    string
		returns []string
	}{
		{"orders", []string{"a", "a_b", "b"}},
		{"addresses", []string{"a", "a_b", "b"}},
		{"orders,addresses", []string{"a", "a_b", "b", "a_c", "c"}},
		{"orders.addresses", []string{"a", "a_b", "b", "b_c", "c", "c_d", "d"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, ok := Navigation(tc.name)
			require.True(t, ok)
			res, err := tr.Single(query.SingleRecordCommand[Customer]{Key: "c-1", Navigation: s})
			require.NoError(t, err)
			assert.Equal(t, tc.returns, res.Returns)
		})
	}

	s, ok := Navigation("")
	assert.True(t, ok)
	assert.Nil(t, s)

	_, ok = Navigation("friends")
	assert.False(t, ok)
}
