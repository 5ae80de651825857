// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package display

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/hwcomposer/internal/hwerr"
)

func primaryAttrs() Attributes {
	return Attributes{
		Width:       1280,
		Height:      720,
		VsyncPeriod: time.Second / 60,
		DPIX:        160.5,
		DPIY:        160,
		Active:      true,
		Connected:   true,
	}
}

func TestTable_GetSet(t *testing.T) {
	tbl := NewTable(Snapshot{Primary: primaryAttrs()})

	got, err := tbl.Get(Primary)
	require.NoError(t, err)
	assert.Equal(t, 1280, got.Width)

	_, err = tbl.Get(ID(5))
	assert.ErrorIs(t, err, hwerr.ErrInvalidArgument)
	assert.ErrorIs(t, tbl.Set(ID(-1), Attributes{}), hwerr.ErrInvalidArgument)

	prev, err := tbl.SetActive(Primary, false)
	require.NoError(t, err)
	assert.True(t, prev)
	got, _ = tbl.Get(Primary)
	assert.False(t, got.Active)

	require.NoError(t, tbl.SetConnected(External, true))
	_, err = tbl.SetActive(External, true)
	require.NoError(t, err)
	assert.True(t, tbl.Snapshot().ExternalActive())
}

func TestAttributes_Value(t *testing.T) {
	a := primaryAttrs()

	tests := []struct {
		attr Attribute
		want int32
	}{
		{AttrVsyncPeriod, int32((time.Second / 60).Nanoseconds())},
		{AttrWidth, 1280},
		{AttrHeight, 720},
		{AttrDPIX, 160500},
		{AttrDPIY, 160000},
	}
	for _, tt := range tests {
		t.Run(tt.attr.String(), func(t *testing.T) {
			v, err := a.Value(tt.attr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}

	_, err := a.Value(Attribute(42))
	assert.ErrorIs(t, err, hwerr.ErrInvalidArgument)
	_, err = a.Value(NoAttribute)
	assert.ErrorIs(t, err, hwerr.ErrInvalidArgument)
}

func TestAttributes_RefreshHz(t *testing.T) {
	assert.Equal(t, 60, primaryAttrs().RefreshHz())
	assert.Equal(t, 0, Attributes{}.RefreshHz())
}

func TestTable_ExclusiveSerialises(t *testing.T) {
	tbl := NewTable(Snapshot{})

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tbl.Exclusive(func() error {
				n := inside.Add(1)
				if n > maxInside.Load() {
					maxInside.Store(n)
				}
				time.Sleep(time.Millisecond)
				inside.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside.Load())
}

func TestID(t *testing.T) {
	assert.Equal(t, "primary", Primary.String())
	assert.Equal(t, "external", External.String())
	assert.False(t, NumDisplays.Valid())
	assert.Equal(t, 1, PrimaryBit)
	assert.Equal(t, 2, ExternalBit)
}

func TestSoftExternal(t *testing.T) {
	e := NewSoftExternal()
	require.NoError(t, e.Post())
	assert.Equal(t, 1, e.Posts())
	require.NoError(t, e.Close())
	assert.True(t, e.Closed())
}
