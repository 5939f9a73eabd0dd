// Package animation blends keyframed dual quaternion poses at arbitrary times.
package animation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/chinedufn/webgl-wield-item-tutorial/internal/dquat"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/skeleton"
)

// ErrEmptyRange is returned when a Range selects no keyframes.
var ErrEmptyRange = errors.New("empty animation range")

// PoseSource is the read side of a skeleton's pose store.
type PoseSource interface {
	JointCount() int
	KeyframeCount() int
	KeyframeTime(k int) (float64, error)
	KeyframeDualQuat(k, j int) (dquat.DQ, error)
}

var _ PoseSource = (*skeleton.Skeleton)(nil)

// Range selects keyframes Start..End (inclusive) as one animation clip that
// began playing at StartTime. The clip loops unless Clamp is set, in which
// case it holds the last keyframe after it finishes.
type Range struct {
	Start     int
	End       int
	StartTime float64
	Clamp     bool
}

// Pose maps joint index to its blended dual quaternion. Valid only for the
// instant it was computed.
type Pose map[int]dquat.DQ

// Interpolate computes the pose of jointIndices at currentTime.
func Interpolate(store PoseSource, currentTime float64, rng Range, jointIndices []int) (Pose, error) {
	n := store.KeyframeCount()
	if n == 0 || rng.End < rng.Start {
		return nil, fmt.Errorf("animation: range [%d, %d] over %d keyframes: %w", rng.Start, rng.End, n, ErrEmptyRange)
	}
	if rng.Start < 0 || rng.End >= n {
		return nil, fmt.Errorf("animation: range [%d, %d] over %d keyframes: %w",
			rng.Start, rng.End, n, skeleton.ErrIndexOutOfRange)
	}
	for _, j := range jointIndices {
		if j < 0 || j >= store.JointCount() {
			return nil, fmt.Errorf("animation: joint %d of %d: %w", j, store.JointCount(), skeleton.ErrIndexOutOfRange)
		}
	}

	k0, k1, t, err := bracket(store, currentTime, rng)
	if err != nil {
		return nil, err
	}

	pose := make(Pose, len(jointIndices))
	for _, j := range jointIndices {
		a, err := store.KeyframeDualQuat(k0, j)
		if err != nil {
			return nil, err
		}
		if k0 == k1 {
			pose[j] = a
			continue
		}
		b, err := store.KeyframeDualQuat(k1, j)
		if err != nil {
			return nil, err
		}
		pose[j] = dquat.Blend(a, b, t)
	}
	return pose, nil
}

// bracket finds the keyframes surrounding currentTime inside rng and the
// blend weight between them.
func bracket(store PoseSource, currentTime float64, rng Range) (int, int, float64, error) {
	first, err := store.KeyframeTime(rng.Start)
	if err != nil {
		return 0, 0, 0, err
	}
	last, err := store.KeyframeTime(rng.End)
	if err != nil {
		return 0, 0, 0, err
	}
	duration := last - first
	if rng.Start == rng.End || duration <= 0 {
		return rng.Start, rng.Start, 0, nil
	}

	local := currentTime - rng.StartTime
	if rng.Clamp {
		local = math.Max(0, math.Min(local, duration))
	} else {
		local = math.Mod(local, duration)
		if local < 0 {
			local += duration
		}
	}
	at := first + local

	// Last keyframe in the range whose time is <= at.
	span := rng.End - rng.Start + 1
	var searchErr error
	i := sort.Search(span, func(i int) bool {
		kt, err := store.KeyframeTime(rng.Start + i)
		if err != nil {
			searchErr = err
			return true
		}
		return kt > at
	})
	if searchErr != nil {
		return 0, 0, 0, searchErr
	}
	k0 := rng.Start + i - 1
	if k0 < rng.Start {
		k0 = rng.Start
	}
	if k0 >= rng.End {
		return rng.End, rng.End, 0, nil
	}
	k1 := k0 + 1

	t0, _ := store.KeyframeTime(k0)
	t1, _ := store.KeyframeTime(k1)
	if t1 <= t0 {
		return k1, k1, 0, nil
	}
	t := (at - t0) / (t1 - t0)
	return k0, k1, math.Max(0, math.Min(1, t)), nil
}
