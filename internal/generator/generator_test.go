package generator

import (
	"math/rand"
	"testing"

	"github.com/dubcc-csosim/csosim/internal/process"
)

func TestGenerateRespectsBoundsAndNesting(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 20; trial++ {
		prog := Generate(rng, 5, 20)

		if len(prog) < 5 {
			t.Fatalf("trial %d: program too short: %d instructions", trial, len(prog))
		}
		if len(prog) > 20+3 {
			t.Fatalf("trial %d: program too long: %d instructions", trial, len(prog))
		}

		depth := 0
		for _, inst := range prog {
			switch inst.Kind {
			case process.KindForStart:
				depth++
				if depth > process.MaxLoopDepth {
					t.Fatalf("trial %d: nesting depth %d exceeds MaxLoopDepth", trial, depth)
				}
				if inst.Repeat < 1 || inst.Repeat > 3 {
					t.Fatalf("trial %d: FOR_START repeat %d out of [1,3]", trial, inst.Repeat)
				}
			case process.KindForEnd:
				depth--
				if depth < 0 {
					t.Fatalf("trial %d: FOR_END with no matching FOR_START", trial)
				}
			}
		}
		if depth != 0 {
			t.Fatalf("trial %d: unbalanced FOR_START/FOR_END, ended at depth %d", trial, depth)
		}
	}
}

func TestGenerateFixedLength(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	prog := Generate(rng, 3, 3)
	if len(prog) != 3 {
		t.Fatalf("expected exactly 3 instructions when min==max==3, got %d", len(prog))
	}
}
