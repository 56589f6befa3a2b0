package main

import (
	"io"
	"os"
	"time"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Environ func() []string

	// Config is used when no config file is named. Nil means DefaultConfig.
	Config *config.Config
	// AssetLoader overrides asset loading. Nil means embedded assets, or
	// assets.basePath from the config.
	AssetLoader md2site.AssetLoader
	// AI overrides the AI service client built from the config.
	AI aiService
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
	}
}
