package simplatform

import (
	"context"
	"fmt"
	"time"

	"github.com/miropolcevpro/paver-ar-web/internal/session"
)

// Epoch is the wall time of trace timestamp 0.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Replay steps s through recs and returns the last frame output. fn, when
// not nil, sees every frame. Rejected user actions are logged and do not
// stop the replay.
func Replay(ctx context.Context, s *session.Session, p *Platform, recs []Record, fn func(i int, out session.FrameOutput)) (session.FrameOutput, error) {
	var last session.FrameOutput
	for i, rec := range recs {
		if err := ctx.Err(); err != nil {
			return last, err
		}
		out, err := s.Step(ctx, p.Input(rec, Epoch))
		if err != nil {
			return last, fmt.Errorf("frame %d: %w", i, err)
		}
		for _, e := range out.Errors {
			logger().Debug("action rejected", "frame", i, "error", e)
		}
		if fn != nil {
			fn(i, out)
		}
		last = out
	}
	logger().Info("replay finished", "frames", len(recs), "session", s.ID())
	return last, nil
}
