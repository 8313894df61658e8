package simulation

import (
	"encoding/json"
	"fmt"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// FlockActor owns a Flock and exposes it through messages:
//
//   - *wrapperspb.UInt32Value runs that many ticks
//   - *emptypb.Empty only asks for the current state
//   - *structpb.Struct updates the parameters named by their JSON keys
//
// Every message is answered with a snapshot built by Snapshot.
type FlockActor struct {
	cfg   *Config
	opts  []Option
	flock *Flock
}

var _ actor.Actor = (*FlockActor)(nil)

func NewFlockActor(cfg *Config, opts ...Option) *FlockActor {
	return &FlockActor{cfg: cfg, opts: opts}
}

func (a *FlockActor) PreStart(ctx *actor.Context) error {
	opts := append([]Option{WithLogger(ctx.ActorSystem().Logger())}, a.opts...)
	f, err := New(a.cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to create flock: %w", err)
	}
	a.flock = f
	return nil
}

func (a *FlockActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Infof("%s started with %d agents", ctx.Self().Name(), a.flock.Len())

	case *wrapperspb.UInt32Value:
		for i := uint32(0); i < msg.GetValue(); i++ {
			if err := a.flock.Tick(); err != nil {
				a.respond(ctx, fmt.Errorf("tick %d: %w", a.flock.TickCount(), err))
				return
			}
		}
		ctx.Logger().Debugf("%s ran %d ticks", ctx.Self().Name(), msg.GetValue())
		a.respond(ctx, nil)

	case *emptypb.Empty:
		a.respond(ctx, nil)

	case *structpb.Struct:
		a.respond(ctx, a.updateParameters(msg))

	default:
		ctx.Unhandled()
	}
}

func (a *FlockActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("flock stopped after %d ticks", a.flock.TickCount())
	return nil
}

// updateParameters overlays the fields present in msg on the current parameters.
func (a *FlockActor) updateParameters(msg *structpb.Struct) error {
	b, err := json.Marshal(msg.AsMap())
	if err != nil {
		return fmt.Errorf("failed to encode parameter update: %w", err)
	}
	p := a.flock.Parameters()
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("failed to decode parameter update: %w", err)
	}
	return a.flock.SetParameters(p)
}

func (a *FlockActor) respond(ctx *actor.ReceiveContext, cause error) {
	if cause != nil {
		ctx.Logger().Errorf("%s: %v", ctx.Self().Name(), cause)
	}
	snapshot, err := Snapshot(a.flock, cause)
	if err != nil {
		ctx.Logger().Errorf("%s: failed to build snapshot: %v", ctx.Self().Name(), err)
		ctx.Unhandled()
		return
	}
	ctx.Response(snapshot)
}

// Snapshot encodes the flock statistics, and cause when not nil, as a protobuf Struct
// with the keys tick, agents, centroid, meanSpeed, minSpeed, maxSpeed, fingerprint and error.
func Snapshot(f *Flock, cause error) (*structpb.Struct, error) {
	s := f.Stats()
	fields := map[string]interface{}{
		"tick":        float64(s.Tick),
		"agents":      s.Agents,
		"centroid":    []interface{}{s.Centroid[0], s.Centroid[1], s.Centroid[2]},
		"meanSpeed":   s.MeanSpeed,
		"minSpeed":    s.MinSpeed,
		"maxSpeed":    s.MaxSpeed,
		"fingerprint": fmt.Sprintf("%016x", f.Fingerprint()),
	}
	if cause != nil {
		fields["error"] = cause.Error()
	}
	return structpb.NewStruct(fields)
}
