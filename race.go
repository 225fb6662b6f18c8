// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package dynq

// RaceEnabled is true when the race detector is active.
// Used by tests to skip concurrent scenarios: the segmented backend and
// the run accounting synchronize through atomix operations, which the
// detector sees as plain memory accesses.
const RaceEnabled = true
