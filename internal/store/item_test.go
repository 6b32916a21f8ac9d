package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matflow/matflow/internal/material"
	"github.com/matflow/matflow/internal/sim"
)

func newDrum(ix *material.Indexer, tick int64) *material.Item {
	return ix.NewItem(material.KindDrum, 400, tick, "mine", material.TriuraniumOctoxide)
}

func TestItemStore_InsertAndCount(t *testing.T) {
	s := sim.New()
	st := NewItemStore(s, "drums")
	ix := material.NewIndexer()

	require.NoError(t, st.Insert(newDrum(ix, 0)))
	require.NoError(t, st.Insert(newDrum(ix, 0)))

	assert.Equal(t, 2, st.Count(nil))
	assert.Equal(t, 800.0, st.Weight())
	// Both arrived at the current tick, so neither is retrievable yet.
	assert.Equal(t, 0, st.CountAvailable(nil))
}

func TestItemStore_DuplicateInsertRejected(t *testing.T) {
	s := sim.New()
	st := NewItemStore(s, "drums")
	ix := material.NewIndexer()

	drum := newDrum(ix, 0)
	require.NoError(t, st.Insert(drum))

	err := st.Insert(drum)
	require.Error(t, err)
	assert.True(t, IsDuplicateItem(err))
	assert.Equal(t, 1, st.Count(nil))
}

func TestItemStore_RemoveMatching(t *testing.T) {
	s := sim.New(sim.WithPropagateErrors())
	st := NewItemStore(s, "shipping")
	ix := material.NewIndexer()

	drum := newDrum(ix, 0)
	cylinder := ix.NewItem(material.KindCylinder, 1000, 0, "conversion", material.UraniumHexafluoride)
	require.NoError(t, st.Insert(drum))
	require.NoError(t, st.Insert(cylinder))

	s.Spawn("taker", func(p *sim.Process) error {
		p.Wait(1)

		got, err := st.RemoveMatching(MatchKind(material.KindCylinder))
		require.NoError(t, err)
		assert.Equal(t, cylinder.Key(), got.Key())
		assert.Equal(t, 1, st.Count(nil))

		_, err = st.RemoveMatching(MatchKind(material.KindCylinder))
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
		return nil
	})
	require.NoError(t, s.Run(2))
}

func TestItemStore_RemoveMatchingSkipsSameTickArrivals(t *testing.T) {
	s := sim.New(sim.WithPropagateErrors())
	st := NewItemStore(s, "shipping")
	ix := material.NewIndexer()

	s.Spawn("taker", func(p *sim.Process) error {
		require.NoError(t, st.Insert(newDrum(ix, 0)))

		_, err := st.RemoveMatching(nil)
		assert.True(t, IsNotFound(err), "a same-tick arrival is not retrievable")

		p.Wait(1)
		_, err = st.RemoveMatching(nil)
		assert.NoError(t, err)
		return nil
	})
	require.NoError(t, s.Run(2))
}

func TestItemStore_PartialGrant(t *testing.T) {
	s := sim.New(sim.WithPropagateErrors())
	st := NewItemStore(s, "shipping")
	ix := material.NewIndexer()
	for i := 0; i < 3; i++ {
		require.NoError(t, st.Insert(newDrum(ix, 0)))
	}

	var granted []*material.Item
	s.Spawn("orderer", func(p *sim.Process) error {
		p.Wait(1)
		granted = p.WaitEvent(st.SubmitOrder(5, 1, nil)).([]*material.Item)
		return nil
	})

	require.NoError(t, s.Run(2))
	// Three of five: the order resolves with what was available.
	require.Len(t, granted, 3)
	assert.Equal(t, 0, st.Count(nil))
}

func TestItemStore_ArrivalOrderAndPredicate(t *testing.T) {
	s := sim.New(sim.WithPropagateErrors())
	st := NewItemStore(s, "shipping")
	ix := material.NewIndexer()

	d1 := newDrum(ix, 0)
	cyl := ix.NewItem(material.KindCylinder, 1000, 0, "conversion", material.UraniumHexafluoride)
	d2 := newDrum(ix, 0)
	require.NoError(t, st.Insert(d1))
	require.NoError(t, st.Insert(cyl))
	require.NoError(t, st.Insert(d2))

	var granted []*material.Item
	s.Spawn("orderer", func(p *sim.Process) error {
		p.Wait(1)
		granted = p.WaitEvent(st.SubmitOrder(2, 1, MatchKind(material.KindDrum))).([]*material.Item)
		return nil
	})

	require.NoError(t, s.Run(2))
	require.Len(t, granted, 2)
	assert.Equal(t, d1.Key(), granted[0].Key(), "oldest matching item first")
	assert.Equal(t, d2.Key(), granted[1].Key())
	assert.Equal(t, 1, st.Count(nil), "the non-matching cylinder stays")
}

func TestItemStore_SameTickArrivalsNotServed(t *testing.T) {
	s := sim.New(sim.WithPropagateErrors())
	st := NewItemStore(s, "shipping")
	ix := material.NewIndexer()

	var first, second []*material.Item
	s.Spawn("producer", func(p *sim.Process) error {
		require.NoError(t, st.Insert(newDrum(ix, 0)))
		return nil
	})
	s.Spawn("consumer", func(p *sim.Process) error {
		first = p.WaitEvent(st.SubmitOrder(1, 1, nil)).([]*material.Item)
		p.Wait(1)
		second = p.WaitEvent(st.SubmitOrder(1, 1, nil)).([]*material.Item)
		return nil
	})

	require.NoError(t, s.Run(2))
	assert.Nil(t, first, "item inserted this tick is invisible to this tick's orders")
	require.Len(t, second, 1)
}

func TestItemStore_ZeroCountOrderResolvesEmpty(t *testing.T) {
	s := sim.New(sim.WithPropagateErrors())
	st := NewItemStore(s, "shipping")

	var granted []*material.Item
	s.Spawn("orderer", func(p *sim.Process) error {
		granted = p.WaitEvent(st.SubmitOrder(0, 1, nil)).([]*material.Item)
		return nil
	})

	require.NoError(t, s.Run(1))
	require.NotNil(t, granted)
	assert.Empty(t, granted)
}

func TestItemStore_PriorityAcrossOrders(t *testing.T) {
	s := sim.New(sim.WithPropagateErrors())
	st := NewItemStore(s, "shipping")
	ix := material.NewIndexer()
	for i := 0; i < 3; i++ {
		require.NoError(t, st.Insert(newDrum(ix, 0)))
	}

	var gotLow, gotHigh []*material.Item
	s.Spawn("low", func(p *sim.Process) error {
		p.Wait(1)
		gotLow = p.WaitEvent(st.SubmitOrder(3, 2, nil)).([]*material.Item)
		return nil
	})
	s.Spawn("high", func(p *sim.Process) error {
		p.Wait(1)
		gotHigh = p.WaitEvent(st.SubmitOrder(2, 1, nil)).([]*material.Item)
		return nil
	})

	require.NoError(t, s.Run(2))
	assert.Len(t, gotHigh, 2)
	assert.Len(t, gotLow, 1, "the lower priority order takes what remains")
}

func TestItemStore_Snapshots(t *testing.T) {
	s := sim.New(sim.WithPropagateErrors())
	st := NewItemStore(s, "shipping")
	ix := material.NewIndexer()

	s.Spawn("flow", func(p *sim.Process) error {
		require.NoError(t, st.Insert(newDrum(ix, 0)))
		require.NoError(t, st.Insert(newDrum(ix, 0)))
		p.Wait(1)
		_, err := st.RemoveMatching(nil)
		require.NoError(t, err)
		st.TakeSnapshot(p.Now())
		return nil
	})

	require.NoError(t, s.Run(2))
	snaps := st.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, int64(1), snaps[0].Tick)
	assert.Equal(t, 1, snaps[0].Count)
	assert.Equal(t, 400.0, snaps[0].Level)
	assert.Equal(t, 2.0, snaps[0].Ins)
	assert.Equal(t, 1.0, snaps[0].Outs)
}
