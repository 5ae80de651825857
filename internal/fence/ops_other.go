// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build !unix

package fence

import "errors"

type systemOps struct{}

func (systemOps) Dup(int) (int, error) { return -1, errors.ErrUnsupported }
func (systemOps) Close(int) error      { return errors.ErrUnsupported }

// SystemOps returns descriptor operations; sync fences only exist on unix hosts.
func SystemOps() Ops {
	return systemOps{}
}
