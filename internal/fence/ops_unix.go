// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build unix

package fence

import "golang.org/x/sys/unix"

type systemOps struct{}

func (systemOps) Dup(fd int) (int, error) {
	return unix.Dup(fd)
}

func (systemOps) Close(fd int) error {
	return unix.Close(fd)
}

// SystemOps returns descriptor operations backed by the host kernel.
func SystemOps() Ops {
	return systemOps{}
}
