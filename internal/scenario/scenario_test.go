package scenario

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestList(t *testing.T) {
	want := []string{"binary", "earth-moon", "random", "ring", "solar"}
	got := List()
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], want[i])
		}
		if Description(want[i]) == "" {
			t.Errorf("missing description for %q", want[i])
		}
	}
}

func TestBuildProducesValidScenarios(t *testing.T) {
	for _, name := range List() {
		t.Run(name, func(t *testing.T) {
			sc, err := Build(name, Options{Seed: 1})
			if err != nil {
				t.Fatalf("Build(%q): %v", name, err)
			}
			if sc.Name != name {
				t.Errorf("Name = %q", sc.Name)
			}
			if err := dynamo.ValidateBodies(sc.Bodies); err != nil {
				t.Errorf("invalid bodies: %v", err)
			}
			if err := sc.Config.Validate(); err != nil {
				t.Errorf("invalid config: %v", err)
			}
			if sc.Config.Steps() < 1 {
				t.Errorf("config yields no steps: %+v", sc.Config)
			}
		})
	}
}

func TestBuildUnknown(t *testing.T) {
	_, err := Build("andromeda", Options{})
	if !errors.Is(err, ErrUnknownScenario) {
		t.Errorf("expected ErrUnknownScenario, got %v", err)
	}
}

func TestEarthMoon(t *testing.T) {
	sc := EarthMoon()
	if len(sc.Bodies) != 2 {
		t.Fatalf("expected 2 bodies, got %d", len(sc.Bodies))
	}
	moon := sc.Bodies[1]
	if moon.Pos.X != 3.844e8 || moon.Vel.Y != 1022 {
		t.Errorf("unexpected moon state: %+v", moon)
	}
	if sc.Config.Steps() != 720 {
		t.Errorf("expected 720 steps, got %d", sc.Config.Steps())
	}
}

func TestSolarMoonsFollowParents(t *testing.T) {
	sc := Solar()
	if len(sc.Bodies) != 11 {
		t.Fatalf("expected 11 bodies, got %d", len(sc.Bodies))
	}
	earth, moon := find(sc.Bodies, "Earth"), find(sc.Bodies, "Moon")
	if got := r2.Sub(moon.Pos, earth.Pos).X; math.Abs(got-384.4e6) > 1 {
		t.Errorf("moon offset from Earth = %v", got)
	}
	if got := r2.Sub(moon.Vel, earth.Vel).Y; math.Abs(got-1.022e3) > 1e-9 {
		t.Errorf("moon speed relative to Earth = %v", got)
	}
}

func TestBinaryIsCircularAndBalanced(t *testing.T) {
	sc := Binary()
	if p := physics.Momentum(sc.Bodies); r2.Norm(p) != 0 {
		t.Errorf("expected zero momentum, got %v", p)
	}
	if c := physics.CenterOfMass(sc.Bodies); r2.Norm(c) != 0 {
		t.Errorf("expected centre of mass at origin, got %v", c)
	}

	// centripetal acceleration v^2/d must equal the gravitational pull
	a, b := sc.Bodies[0], sc.Bodies[1]
	acc, err := physics.AccelerationOn(sc.Config.G, 0, b, a)
	if err != nil {
		t.Fatal(err)
	}
	v := r2.Norm(b.Vel)
	if math.Abs(r2.Norm(acc)-v*v/b.Pos.X)/r2.Norm(acc) > 1e-12 {
		t.Errorf("orbit not circular: |a|=%e v^2/d=%e", r2.Norm(acc), v*v/b.Pos.X)
	}
}

func TestRing(t *testing.T) {
	sc, err := Ring(6)
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Bodies) != 6 || sc.Config.G != 1 {
		t.Fatalf("unexpected ring: %d bodies, G=%v", len(sc.Bodies), sc.Config.G)
	}
	for _, b := range sc.Bodies {
		if math.Abs(r2.Norm(b.Pos)-1) > 1e-12 {
			t.Errorf("%s not on unit circle: %v", b.Name, b.Pos)
		}
		if math.Abs(r2.Dot(b.Pos, b.Vel)) > 1e-12 {
			t.Errorf("%s velocity not tangential", b.Name)
		}
	}

	def, err := Ring(0)
	if err != nil || len(def.Bodies) != defaultRingN {
		t.Errorf("Ring(0) = %v bodies, err %v", len(def.Bodies), err)
	}
}

func TestRandomIsSeeded(t *testing.T) {
	a, err := Random(5, 42)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Random(5, 42)
	c, _ := Random(5, 43)

	for i := range a.Bodies {
		if a.Bodies[i] != b.Bodies[i] {
			t.Errorf("body %d differs for the same seed", i)
		}
	}
	if a.Bodies[0] == c.Bodies[0] {
		t.Error("different seeds produced the same first body")
	}
}

func TestRandomRanges(t *testing.T) {
	sc, err := Random(200, 7)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range sc.Bodies {
		r := r2.Norm(b.Pos)
		if r < 1e10*(1-1e-12) || r > 1e11*(1+1e-12) {
			t.Errorf("%s radius %e out of range", b.Name, r)
		}
		if b.Mass < 1e24 || b.Mass > 1e25 {
			t.Errorf("%s mass %e out of range", b.Name, b.Mass)
		}
		if math.Abs(r2.Norm(b.Vel)-2e4) > 1e-6 {
			t.Errorf("%s speed %v, want 2e4", b.Name, r2.Norm(b.Vel))
		}
	}
}

func TestGeneratedRejectsBadCount(t *testing.T) {
	for _, n := range []int{-1, maxBodies + 1} {
		if _, err := Random(n, 0); !errors.Is(err, dynamo.ErrInvalidConfig) {
			t.Errorf("Random(%d): expected ErrInvalidConfig, got %v", n, err)
		}
		if _, err := Ring(n); !errors.Is(err, dynamo.ErrInvalidConfig) {
			t.Errorf("Ring(%d): expected ErrInvalidConfig, got %v", n, err)
		}
	}
}
