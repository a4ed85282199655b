// Package memory implements the first-fit contiguous memory allocator
// that gates admission to a CPU core.
package memory

import (
	"fmt"
	"os"
	"sort"

	"github.com/dubcc-csosim/csosim/internal/clock"
)

// Block is a half-open byte range [Start, Start+Size) with an owner when
// occupied.
type Block struct {
	Start int64
	Size  int64
	Free  bool
	Owner uint64 // valid iff !Free
	Name  string // owner's process name, cached for snapshot formatting
}

func (b Block) End() int64 { return b.Start + b.Size }

// Allocator is the contiguous first-fit allocator over [0, Total).
type Allocator struct {
	total      int64
	perProcess int64
	blocks     []Block // kept sorted by Start
	snapshotID int
	clock      clock.Clock
	dir        string
}

// New constructs an Allocator with one free block spanning the whole
// range.
func New(total, perProcess int64, c clock.Clock, snapshotDir string) *Allocator {
	return &Allocator{
		total:      total,
		perProcess: perProcess,
		blocks:     []Block{{Start: 0, Size: total, Free: true}},
		clock:      c,
		dir:        snapshotDir,
	}
}

// TryAdmit scans blocks in ascending Start for the first free block large
// enough to hold mem_per_proc bytes, splits it if strictly larger, and
// marks the front portion occupied by pid. Returns the base address and
// true on success.
func (a *Allocator) TryAdmit(pid uint64, name string) (int64, bool) {
	for i := range a.blocks {
		b := &a.blocks[i]
		if !b.Free || b.Size < a.perProcess {
			continue
		}
		base := b.Start
		if b.Size > a.perProcess {
			remainder := Block{Start: b.Start + a.perProcess, Size: b.Size - a.perProcess, Free: true}
			b.Size = a.perProcess
			b.Free = false
			b.Owner = pid
			b.Name = name
			a.insertAfter(i, remainder)
		} else {
			b.Free = false
			b.Owner = pid
			b.Name = name
		}
		return base, true
	}
	return 0, false
}

func (a *Allocator) insertAfter(i int, b Block) {
	a.blocks = append(a.blocks, Block{})
	copy(a.blocks[i+2:], a.blocks[i+1:])
	a.blocks[i+1] = b
}

// Release marks the block owned by pid free and coalesces adjacent free
// neighbors. Unknown pid is a silent no-op.
func (a *Allocator) Release(pid uint64) {
	for i := range a.blocks {
		if !a.blocks[i].Free && a.blocks[i].Owner == pid {
			a.blocks[i].Free = true
			a.blocks[i].Owner = 0
			a.blocks[i].Name = ""
			break
		}
	}
	a.coalesce()
}

func (a *Allocator) coalesce() {
	sort.Slice(a.blocks, func(i, j int) bool { return a.blocks[i].Start < a.blocks[j].Start })
	merged := a.blocks[:0]
	for _, b := range a.blocks {
		if n := len(merged); n > 0 && merged[n-1].Free && b.Free && merged[n-1].End() == b.Start {
			merged[n-1].Size += b.Size
			continue
		}
		merged = append(merged, b)
	}
	a.blocks = merged
}

// Residents reports the number of occupied blocks.
func (a *Allocator) Residents() int {
	n := 0
	for _, b := range a.blocks {
		if !b.Free {
			n++
		}
	}
	return n
}

// ExternalFragmentation reports max(A, B):
// A = sum of free-block sizes at or below mem_per_proc;
// B = sum of all free-block sizes minus the largest free block.
func (a *Allocator) ExternalFragmentation() int64 {
	var sumFree, largest, sumSmall int64
	freeCount := 0
	for _, b := range a.blocks {
		if !b.Free {
			continue
		}
		freeCount++
		sumFree += b.Size
		if b.Size > largest {
			largest = b.Size
		}
		if b.Size <= a.perProcess {
			sumSmall += b.Size
		}
	}
	var b int64
	if freeCount > 1 {
		b = sumFree - largest
	}
	if sumSmall > b {
		return sumSmall
	}
	return b
}

// Blocks returns a defensive copy of the current block list, sorted by
// Start ascending, for snapshotting and tests.
func (a *Allocator) Blocks() []Block {
	out := make([]Block, len(a.blocks))
	copy(out, a.blocks)
	return out
}

// Snapshot increments the internal counter and writes
// memory_stamp_<k>.txt describing the current block layout.
func (a *Allocator) Snapshot() error {
	a.snapshotID++
	path := a.dir
	if path == "" {
		path = "."
	}
	filename := fmt.Sprintf("%s/memory_stamp_%d.txt", path, a.snapshotID)

	var buf []byte
	buf = append(buf, fmt.Sprintf("Timestamp: (%s)\n", a.clock.Now().Format(clock.SnapshotTimestampFormat))...)
	buf = append(buf, fmt.Sprintf("Number of processes in memory: %d\n", a.Residents())...)
	buf = append(buf, fmt.Sprintf("Total external fragmentation in KB: %d\n", a.ExternalFragmentation())...)
	buf = append(buf, '\n')
	buf = append(buf, fmt.Sprintf("----end---- = %d\n", a.total)...)

	blocks := a.Blocks()
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		if b.Free {
			buf = append(buf, fmt.Sprintf("%d\n", b.Start)...)
			continue
		}
		buf = append(buf, fmt.Sprintf("%s\n", b.Name)...)
		buf = append(buf, fmt.Sprintf("%d\n\n", b.End())...)
		buf = append(buf, fmt.Sprintf("%d\n", b.Start)...)
	}
	buf = append(buf, "----start---- = 0\n"...)

	return os.WriteFile(filename, buf, 0o644)
}

// SnapshotCount reports how many snapshots have been taken so far.
func (a *Allocator) SnapshotCount() int { return a.snapshotID }
