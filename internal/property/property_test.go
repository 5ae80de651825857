// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package property

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestParseBool(t *testing.T) {
	for _, raw := range []string{"1", "true", " TRUE\n", "yes", "on"} {
		assert.True(t, ParseBool(raw), raw)
	}
	for _, raw := range []string{"", "0", "false", "off", "maybe"} {
		assert.False(t, ParseBool(raw), raw)
	}
}

func TestStatic(t *testing.T) {
	var nilFlag *Static
	assert.False(t, nilFlag.Enabled())

	s := NewStatic(true)
	assert.True(t, s.Enabled())
	s.Set(false)
	assert.False(t, s.Enabled())
}

func TestFileFlag_InitialRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "securing")

	assert.False(t, NewFileFlag(path).Enabled(), "missing file reads false")

	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0o600))
	f := NewFileFlag(path)
	assert.True(t, f.Enabled())
	assert.Equal(t, path, f.Path())
	assert.NoError(t, f.Close(), "close without start is a no-op")
}

func TestFileFlag_FollowsChanges(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	path := filepath.Join(dir, "securing")
	require.NoError(t, os.WriteFile(path, []byte("0"), 0o600))

	f := NewFileFlag(path)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, f.Start(ctx))
	defer func() { _ = f.Close() }()

	assert.Error(t, f.Start(ctx), "second start rejected")

	require.NoError(t, os.WriteFile(path, []byte("true"), 0o600))
	assert.Eventually(t, f.Enabled, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(path))
	assert.Eventually(t, func() bool { return !f.Enabled() }, 2*time.Second, 10*time.Millisecond)
}

func TestFileFlag_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := NewFileFlag(filepath.Join(t.TempDir(), "securing"))
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.Start(ctx))

	cancel()
	f.wg.Wait()
}
