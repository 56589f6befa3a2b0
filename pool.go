package md2site

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// Worker sizing constants.
const (
	// MinWorkers ensures at least one worker is available.
	MinWorkers = 1

	// MaxWorkers caps concurrent reads and AI calls; the AI service rate
	// limit is the real bottleneck beyond this.
	MaxWorkers = 8
)

// ResolveWorkers determines the worker count.
// Priority: explicit workers > GOMAXPROCS (adjusted by automaxprocs in containers).
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}
	return max(MinWorkers, min(runtime.GOMAXPROCS(0), MaxWorkers))
}

// readFiles reads paths with a bounded number of workers. Each result goes
// to the slot of its input index, so order is preserved. The first error
// in input order is returned.
func readFiles(ctx context.Context, paths []string, workers int, maxSize int64) ([]File, error) {
	files := make([]File, len(paths))
	errs := make([]error, len(paths))
	jobs := make(chan int, len(paths))
	for i := range paths {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range min(workers, len(paths)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					errs[idx] = err
					continue
				}
				files[idx], errs[idx] = readFile(paths[idx], maxSize)
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// readFile reads one file, refusing to load more than maxSize bytes.
func readFile(path string, maxSize int64) (File, error) {
	f, err := os.Open(path) // #nosec G304 -- path is user-provided input
	if err != nil {
		return File{}, fmt.Errorf("%w: %w", ErrReadFile, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return File{}, fmt.Errorf("%w: %s: %w", ErrReadFile, path, err)
	}
	if int64(len(data)) > maxSize {
		return File{}, fmt.Errorf("%w: %s (max %d bytes)", ErrFileTooLarge, path, maxSize)
	}
	return File{Name: filepath.Base(path), Content: string(data)}, nil
}
