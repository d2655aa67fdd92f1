package renderer

import (
	"Volumetrics/internal/logger"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// TargetPoolStats provides debugging and leak detection information
type TargetPoolStats struct {
	Acquired  int // GetTemporary calls that succeeded
	Released  int // ReleaseTemporary calls that succeeded
	Created   int // targets created on the device
	Destroyed int // targets destroyed on the device
	Reused    int // acquisitions served from the free list
	Active    int // targets currently handed out
	Free      int // targets parked for reuse
}

// TargetPool hands out temporary render targets for the duration of a frame and
// keeps released ones for reuse by later requests with an identical descriptor.
type TargetPool struct {
	device Device
	free   map[TargetDesc][]TargetID
	active map[TargetID]TargetDesc
	mu     sync.Mutex
	stats  TargetPoolStats
}

// NewTargetPool creates a pool allocating from device
func NewTargetPool(device Device) *TargetPool {
	return &TargetPool{
		device: device,
		free:   make(map[TargetDesc][]TargetID),
		active: make(map[TargetID]TargetDesc),
	}
}

// Device returns the device the pool allocates from
func (tp *TargetPool) Device() Device {
	return tp.device
}

// GetTemporary returns a target matching desc, cleared to desc.ClearColor
func (tp *TargetPool) GetTemporary(desc TargetDesc) (TargetID, error) {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	var id TargetID
	if ids := tp.free[desc]; len(ids) > 0 {
		id = ids[len(ids)-1]
		tp.free[desc] = ids[:len(ids)-1]
		tp.stats.Reused++
	} else {
		created, err := tp.device.CreateTarget(desc)
		if err != nil {
			logger.Log.Warn("Temporary target allocation failed",
				zap.Int("width", desc.Width),
				zap.Int("height", desc.Height),
				zap.Stringer("format", desc.Format),
				zap.Error(err))
			return 0, err
		}
		id = created
		tp.stats.Created++
	}

	if err := tp.device.Clear(id, desc.ClearColor); err != nil {
		tp.free[desc] = append(tp.free[desc], id)
		return 0, fmt.Errorf("%w: clear target %d: %w", ErrAllocation, id, err)
	}

	tp.active[id] = desc
	tp.stats.Acquired++

	logger.Log.Debug("Temporary target acquired",
		zap.Uint32("targetID", uint32(id)),
		zap.Int("width", desc.Width),
		zap.Int("height", desc.Height),
		zap.Stringer("format", desc.Format))

	return id, nil
}

// ReleaseTemporary returns a target to the pool. Releasing a target twice is an error.
func (tp *TargetPool) ReleaseTemporary(id TargetID) error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	desc, exists := tp.active[id]
	if !exists {
		logger.Log.Warn("Attempted to release unknown temporary target",
			zap.Uint32("targetID", uint32(id)))
		return fmt.Errorf("release target %d: %w", id, ErrUnknownTarget)
	}

	delete(tp.active, id)
	tp.free[desc] = append(tp.free[desc], id)
	tp.stats.Released++

	logger.Log.Debug("Temporary target released",
		zap.Uint32("targetID", uint32(id)))
	return nil
}

// IsActive reports whether id is currently handed out
func (tp *TargetPool) IsActive(id TargetID) bool {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	_, ok := tp.active[id]
	return ok
}

// GetStats returns current pool statistics
func (tp *TargetPool) GetStats() TargetPoolStats {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	stats := tp.stats
	stats.Active = len(tp.active)
	for _, ids := range tp.free {
		stats.Free += len(ids)
	}
	return stats
}

// LogStats logs current pool statistics
func (tp *TargetPool) LogStats() {
	stats := tp.GetStats()
	logger.Log.Info("Target Pool Stats",
		zap.Int("acquired", stats.Acquired),
		zap.Int("released", stats.Released),
		zap.Int("created", stats.Created),
		zap.Int("destroyed", stats.Destroyed),
		zap.Int("reused", stats.Reused),
		zap.Int("active", stats.Active),
		zap.Int("free", stats.Free))
}

// Trim destroys every parked target. Targets still handed out are left alone.
func (tp *TargetPool) Trim() {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	for desc, ids := range tp.free {
		for _, id := range ids {
			if err := tp.device.DestroyTarget(id); err != nil {
				logger.Log.Warn("Failed to destroy pooled target",
					zap.Uint32("targetID", uint32(id)),
					zap.Error(err))
				continue
			}
			tp.stats.Destroyed++
		}
		delete(tp.free, desc)
	}
}

// Clear destroys every target the pool knows about (for shutdown/testing)
func (tp *TargetPool) Clear() {
	tp.Trim()

	tp.mu.Lock()
	defer tp.mu.Unlock()
	for id := range tp.active {
		if err := tp.device.DestroyTarget(id); err == nil {
			tp.stats.Destroyed++
		}
	}
	tp.active = make(map[TargetID]TargetDesc)

	logger.Log.Info("Target pool cleared")
}
