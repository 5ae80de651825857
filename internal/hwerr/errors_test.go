// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package hwerr

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "invalid argument", err: Invalid("display %d", 7), want: -int(syscall.EINVAL)},
		{name: "wrapped invalid argument", err: fmt.Errorf("prepare: %w", ErrInvalidArgument), want: -int(syscall.EINVAL)},
		{name: "unavailable", err: ErrUnavailable, want: -1},
		{name: "timeout", err: IO("fence wait", ErrTimeout), want: -int(syscall.ETIMEDOUT)},
		{name: "errno", err: IO("vsync ctrl", syscall.EBUSY), want: -int(syscall.EBUSY)},
		{name: "unknown hardware", err: IO("post", errors.New("boom")), want: -int(syscall.EIO)},
		{name: "closed", err: ErrClosed, want: -int(syscall.ENODEV)},
		{name: "joined keeps first class", err: errors.Join(IO("sync", syscall.EAGAIN)), want: -int(syscall.EAGAIN)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestIO(t *testing.T) {
	assert.NoError(t, IO("noop", nil))

	err := IO("blank", syscall.EIO)
	var ioErr *IOError
	assert.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "blank", ioErr.Op)
	assert.ErrorIs(t, err, syscall.EIO)
	assert.Equal(t, "blank: input/output error", err.Error())
}
