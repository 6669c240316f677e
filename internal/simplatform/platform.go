// Package simplatform is a synthetic AR host. It creates anchors, moves a
// scripted camera over a flat floor and replays JSON-lines traces through
// a session.
package simplatform

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/miropolcevpro/paver-ar-web/internal/lockedframe"
	"github.com/miropolcevpro/paver-ar-web/internal/logging"
	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

// ErrAnchorFailed is returned by anchor factories when FailAnchors is set.
var ErrAnchorFailed = errors.New("anchor creation failed")

// Platform implements session.Platform with switchable capabilities.
type Platform struct {
	HitTest     bool
	Anchors     bool
	Depth       bool
	FailAnchors bool

	mu   sync.Mutex
	live map[string]*Anchor
}

// New returns a platform with every capability enabled.
func New() *Platform {
	return &Platform{HitTest: true, Anchors: true, Depth: true}
}

func logger() *slog.Logger {
	return logging.For("simplatform")
}

func (p *Platform) SupportsHitTest() bool { return p.HitTest }
func (p *Platform) SupportsAnchors() bool { return p.Anchors }
func (p *Platform) SupportsDepth() bool   { return p.Depth }

// Anchor is a synthetic anchor. Its pose only changes when a trace moves it.
type Anchor struct {
	id       string
	pose     geometry.Pose
	platform *Platform
}

// ID returns the anchor's uuid.
func (a *Anchor) ID() string {
	return a.id
}

// Pose returns the last reported pose.
func (a *Anchor) Pose() geometry.Pose {
	return a.pose
}

// Delete removes the anchor from the platform.
func (a *Anchor) Delete() {
	p := a.platform
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.live, a.id)
	logger().Debug("anchor deleted", "anchor", a.id)
}

// hitAnchors creates anchors at one hit pose.
type hitAnchors struct {
	platform *Platform
	pose     geometry.Pose
}

func (h hitAnchors) CreateAnchor(ctx context.Context) (lockedframe.Anchor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.platform.createAnchor(h.pose)
}

// AnchorsAt returns an anchor factory for a hit at pose, or nil when the
// platform has no anchor support.
func (p *Platform) AnchorsAt(pose geometry.Pose) lockedframe.AnchorFactory {
	if !p.Anchors {
		return nil
	}
	return hitAnchors{platform: p, pose: pose}
}

func (p *Platform) createAnchor(pose geometry.Pose) (*Anchor, error) {
	if p.FailAnchors {
		return nil, ErrAnchorFailed
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.live == nil {
		p.live = make(map[string]*Anchor)
	}
	a := &Anchor{id: uuid.NewString(), pose: pose, platform: p}
	p.live[a.id] = a
	logger().Debug("anchor created", "anchor", a.id)
	return a, nil
}

// MoveAnchors sets the pose of every live anchor, as when the platform
// refines its map.
func (p *Platform) MoveAnchors(pose geometry.Pose) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range p.live {
		a.pose = pose
	}
}

// AnchorPoses returns the current pose of every live anchor by id.
func (p *Platform) AnchorPoses() map[string]geometry.Pose {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.live) == 0 {
		return nil
	}
	poses := make(map[string]geometry.Pose, len(p.live))
	for id, a := range p.live {
		poses[id] = a.pose
	}
	return poses
}

// LiveAnchors returns the ids of anchors not yet deleted, sorted.
func (p *Platform) LiveAnchors() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.live))
	for id := range p.live {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
