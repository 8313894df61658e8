package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func startFlockActor(t *testing.T, cfg *Config) (*actor.PID, *FlockActor) {
	t.Helper()
	ctx := context.Background()

	system, err := actor.NewActorSystem("FlockTest", actor.WithLogger(log.DiscardLogger))
	if err != nil {
		t.Fatalf("NewActorSystem() error = %v", err)
	}
	if err := system.Start(ctx); err != nil {
		t.Fatalf("system.Start() error = %v", err)
	}
	t.Cleanup(func() { _ = system.Stop(ctx) })

	fa := NewFlockActor(cfg)
	pid, err := system.Spawn(ctx, "flock", fa)
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	return pid, fa
}

// snapshotOf checks an Ask result and returns the snapshot it carries.
func snapshotOf(t *testing.T, resp interface{}, err error) *structpb.Struct {
	t.Helper()
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	snapshot, ok := resp.(*structpb.Struct)
	if !ok {
		t.Fatalf("Expected a *structpb.Struct, got %T", resp)
	}
	return snapshot
}

func TestFlockActor_Tick(t *testing.T) {
	pid, _ := startFlockActor(t, testConfig(30))
	ctx := context.Background()

	resp, err := actor.Ask(ctx, pid, wrapperspb.UInt32(5), time.Second)
	snap := snapshotOf(t, resp, err)
	fields := snap.GetFields()
	if got := fields["tick"].GetNumberValue(); got != 5 {
		t.Errorf("Expected tick 5, got %v", got)
	}
	if got := fields["agents"].GetNumberValue(); got != 30 {
		t.Errorf("Expected 30 agents, got %v", got)
	}
	if got := len(fields["centroid"].GetListValue().GetValues()); got != 3 {
		t.Errorf("Expected a 3 component centroid, got %d", got)
	}
	if s := fields["minSpeed"].GetNumberValue(); s < MinSpeed-1e-9 {
		t.Errorf("Expected speeds >= %v, got %v", MinSpeed, s)
	}
	if fields["fingerprint"].GetStringValue() == "" {
		t.Error("Expected a fingerprint")
	}

	// Empty only reads
	resp, err = actor.Ask(ctx, pid, &emptypb.Empty{}, time.Second)
	again := snapshotOf(t, resp, err)
	if got := again.GetFields()["tick"].GetNumberValue(); got != 5 {
		t.Errorf("Expected tick still 5, got %v", got)
	}
	if again.GetFields()["fingerprint"].GetStringValue() != fields["fingerprint"].GetStringValue() {
		t.Error("Expected the same fingerprint without ticking")
	}
}

func TestFlockActor_MatchesDirectFlock(t *testing.T) {
	cfg := testConfig(40)
	pid, _ := startFlockActor(t, cfg)

	resp, err := actor.Ask(context.Background(), pid, wrapperspb.UInt32(10), time.Second)
	snap := snapshotOf(t, resp, err)

	f := newTestFlock(t, cfg)
	for i := 0; i < 10; i++ {
		if err := f.Tick(); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
	}
	want, err := Snapshot(f, nil)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got := snap.GetFields()["fingerprint"].GetStringValue(); got != want.GetFields()["fingerprint"].GetStringValue() {
		t.Errorf("Expected the actor flock to match a directly driven flock, fingerprint %s", got)
	}
}

func TestFlockActor_UpdateParameters(t *testing.T) {
	pid, fa := startFlockActor(t, testConfig(10))
	ctx := context.Background()

	update, err := structpb.NewStruct(map[string]interface{}{
		"cohesionStrength": 2.5,
		"useParallel":      false,
		"workers":          3,
	})
	if err != nil {
		t.Fatalf("NewStruct() error = %v", err)
	}
	resp, err := actor.Ask(ctx, pid, update, time.Second)
	snap := snapshotOf(t, resp, err)
	if _, failed := snap.GetFields()["error"]; failed {
		t.Fatalf("unexpected error in snapshot: %v", snap.GetFields()["error"])
	}

	p := fa.flock.Parameters()
	if p.CohesionStrength != 2.5 || p.UseParallel || p.Workers != 3 {
		t.Errorf("update not applied: %+v", p)
	}
	if p.AlignmentStrength != 10 {
		t.Errorf("fields absent from the update must keep their value, got alignment %v", p.AlignmentStrength)
	}

	bad, _ := structpb.NewStruct(map[string]interface{}{"neighborhoodRadius": -1})
	resp, err = actor.Ask(ctx, pid, bad, time.Second)
	snap = snapshotOf(t, resp, err)
	if snap.GetFields()["error"].GetStringValue() == "" {
		t.Error("Expected the snapshot to carry the validation error")
	}
	if fa.flock.Parameters().NeighborhoodRadius != 1 {
		t.Error("a rejected update must keep the previous parameters")
	}
}

func TestFlockActor_UnhandledMessage(t *testing.T) {
	pid, _ := startFlockActor(t, testConfig(10))
	if _, err := actor.Ask(context.Background(), pid, wrapperspb.String("fly"), 200*time.Millisecond); err == nil {
		t.Error("Expected an error for an unhandled message")
	}
}

func TestFlockActor_InvalidConfig(t *testing.T) {
	ctx := context.Background()
	system, err := actor.NewActorSystem("FlockInvalid", actor.WithLogger(log.DiscardLogger))
	if err != nil {
		t.Fatalf("NewActorSystem() error = %v", err)
	}
	if err := system.Start(ctx); err != nil {
		t.Fatalf("system.Start() error = %v", err)
	}
	defer func() { _ = system.Stop(ctx) }()

	cfg := testConfig(0)
	if _, err := system.Spawn(ctx, "flock", NewFlockActor(cfg)); err == nil {
		t.Error("Expected Spawn to fail for a flock without agents")
	}
}
