package main

import (
	"context"
	"fmt"
	"io"
	"os"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
)

// readInput reads one file, rejecting files larger than maxSize bytes.
// Zero means md2site.DefaultMaxFileSize.
func readInput(path string, maxSize int64) (string, error) {
	if maxSize <= 0 {
		maxSize = md2site.DefaultMaxFileSize
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", md2site.ErrReadFile, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", md2site.ErrReadFile, path, err)
	}
	if int64(len(data)) > maxSize {
		return "", fmt.Errorf("%w: %s (max %d bytes)", md2site.ErrFileTooLarge, path, maxSize)
	}
	return string(data), nil
}

// parseInputs expands file and directory arguments and parses the Markdown
// files found, in order, without rendering them.
func parseInputs(ctx context.Context, args []string, cfg *config.Config) ([]md2site.Page, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: no input files or directories", ErrUsage)
	}
	paths, err := fileutil.ExpandInputs(args)
	if err != nil {
		return nil, err
	}

	var opts []md2site.Option
	if cfg.Storage.MaxFileSize > 0 {
		opts = append(opts, md2site.WithMaxFileSize(cfg.Storage.MaxFileSize))
	}
	g, err := md2site.NewGenerator(opts...)
	if err != nil {
		return nil, err
	}
	return g.ParseFiles(ctx, paths)
}
