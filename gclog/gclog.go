// Package gclog provides the allocator core's structured logging, one
// attribute-carrying line per pool growth, instance initialization, and
// collection-disable toggle. It stands in for the teacher kernel's
// allocation-free kfmt/early.Printf, which existed only because a
// freestanding kernel cannot call into the Go runtime's allocator before
// memory management is up; that constraint does not apply here, so this
// package uses the standard library's structured logger directly.
package gclog

import (
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	current = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

// SetLogger replaces the package-wide logger. Passing nil restores a
// handler writing to os.Stderr.
func SetLogger(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	current = l
}

func logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// PoolGrown logs that a pool mapped a new page.
func PoolGrown(sizeClass uint32, scanned bool, pageIndex int) {
	logger().Info("pool grown",
		slog.Uint64("size_class", uint64(sizeClass)),
		slog.Bool("scanned", scanned),
		slog.Int("page_index", pageIndex),
	)
}

// InstanceInit logs that an allocator instance finished constructing its
// pool matrix.
func InstanceInit(name string, classes int) {
	logger().Info("allocator instance initialized",
		slog.String("instance", name),
		slog.Int("size_classes", classes),
	)
}

// DisableDepthChanged logs a transition of the collection disable counter.
func DisableDepthChanged(name string, depth int) {
	logger().Info("disable depth changed",
		slog.String("instance", name),
		slog.Int("depth", depth),
	)
}
