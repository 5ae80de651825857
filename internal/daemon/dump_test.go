// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "hwc.yaml")

	require.NoError(t, WriteDump(context.Background(), path, &fakeComposer{dump: "frame: 1\n"}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "frame: 1\n", string(data))

	require.NoError(t, WriteDump(context.Background(), path, &fakeComposer{dump: "frame: 2\n"}))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "frame: 2\n", string(data))
}

func TestWriteDump_FailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hwc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o600))

	err := WriteDump(context.Background(), path, &fakeComposer{dumpErr: errors.New("boom")})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "pending file must be cleaned up")
}

func TestWriteDump_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WriteDump(ctx, filepath.Join(t.TempDir(), "hwc.yaml"), &fakeComposer{})
	assert.ErrorIs(t, err, context.Canceled)
}
