// Copyright 2025 Loom ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package device is the public API for the Loom reference device.
//
// A Device exposes two accounted memory pools (bulk DRAM and fast
// local L1) and the native layout primitives the tensor engine
// dispatches to. The open/close lifecycle is managed by the caller:
//
//	dev, err := device.Open(0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
// A Device must outlive every tensor that references it, and callers
// issuing operations from multiple goroutines must serialize them per
// device id.
package device

import (
	"github.com/loom-ml/loom/internal/device"
)

// Device is an open accelerator identified by an id.
type Device = device.Device

// Buffer is a device allocation owned by exactly one tensor at a time.
type Buffer = device.Buffer

// BufferType names a device memory pool.
type BufferType = device.BufferType

// Device memory pools.
const (
	DRAM BufferType = device.DRAM
	L1   BufferType = device.L1
)

// MemoryConfig selects the pool and bank interleaving for a device
// allocation.
type MemoryConfig = device.MemoryConfig

// The two supported memory config presets.
var (
	DRAMMemoryConfig = device.DRAMMemoryConfig
	L1MemoryConfig   = device.L1MemoryConfig
)

// PoolStats is a point-in-time snapshot of one pool's allocator
// accounting.
type PoolStats = device.PoolStats

// Open opens the device with the given id.
func Open(id int) (*Device, error) {
	return device.Open(id)
}
