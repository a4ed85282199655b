// Package generator produces randomized, balanced, nesting-bounded
// programs over the process instruction set.
package generator

import (
	"fmt"
	"math/rand"

	"github.com/dubcc-csosim/csosim/internal/process"
)

const (
	minDeclareImm = 0
	maxDeclareImm = 65535
	minSleep      = 0
	maxSleep      = 255
	minForRepeat  = 1
	maxForRepeat  = 3
	minForInner   = 1
	maxForInner   = 3
)

const kindCount = 6

// Generate builds a balanced program of between min and max primitive
// instructions (inclusive). rng is injected so tests and the batch
// generator can control (or seed) randomness independently.
func Generate(rng *rand.Rand, minIns, maxIns int) []process.Instruction {
	target := minIns
	if maxIns > minIns {
		target = minIns + rng.Intn(maxIns-minIns+1)
	}

	var out []process.Instruction
	emit(rng, &out, target, 0)
	return out
}

// emit appends instructions to *out until it reaches target length,
// recursing into FOR bodies up to process.MaxLoopDepth deep.
func emit(rng *rand.Rand, out *[]process.Instruction, target, depth int) {
	counter := len(*out)
	for len(*out) < target {
		remaining := target - len(*out)
		kind := rng.Intn(kindCount)

		// A FOR needs room for FOR_START + >=1 body instruction + FOR_END;
		// fall back to PRINT when budget or nesting won't allow it.
		wantsFor := kind == 5
		if wantsFor && (remaining < 3 || depth >= process.MaxLoopDepth) {
			wantsFor = false
		}

		if wantsFor {
			innerBudget := minForInner + rng.Intn(maxForInner-minForInner+1)
			maxInner := remaining - 2 // minus FOR_START and FOR_END
			if innerBudget > maxInner {
				innerBudget = maxInner
			}
			if innerBudget < 1 {
				innerBudget = 1
			}
			repeat := minForRepeat + rng.Intn(maxForRepeat-minForRepeat+1)
			*out = append(*out, process.ForStart(repeat))
			emit(rng, out, len(*out)+innerBudget, depth+1)
			*out = append(*out, process.ForEnd())
			counter = len(*out)
			continue
		}

		switch kind {
		case 0:
			*out = append(*out, process.Print(fmt.Sprintf("Hello from var%d", counter)))
		case 1:
			imm := uint16(minDeclareImm + rng.Intn(maxDeclareImm-minDeclareImm+1))
			*out = append(*out, process.Declare(fmt.Sprintf("var%d", counter), imm))
		case 2:
			lhs := literalOrVar(rng, counter)
			rhs := literalOrVar(rng, counter)
			*out = append(*out, process.Add(fmt.Sprintf("result%d", counter), lhs, rhs))
		case 3:
			lhs := literalOrVar(rng, counter)
			rhs := literalOrVar(rng, counter)
			*out = append(*out, process.Subtract(fmt.Sprintf("result%d", counter), lhs, rhs))
		case 4:
			ticks := uint8(minSleep + rng.Intn(maxSleep-minSleep+1))
			*out = append(*out, process.Sleep(ticks))
		default:
			*out = append(*out, process.Print(fmt.Sprintf("Hello from var%d", counter)))
		}
		counter = len(*out)
	}
}

func literalOrVar(rng *rand.Rand, counter int) string {
	if rng.Intn(2) == 0 {
		return fmt.Sprintf("var%d", counter)
	}
	return fmt.Sprintf("%d", minDeclareImm+rng.Intn(maxDeclareImm-minDeclareImm+1))
}
