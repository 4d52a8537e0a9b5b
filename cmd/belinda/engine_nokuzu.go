//go:build !cgo

package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dusk-indust/belinda/internal/config"
	"github.com/dusk-indust/belinda/internal/graph"
)

func openKuzu(context.Context, *config.ProjectConfig, *zap.Logger) (graph.Engine, error) {
	return nil, errors.New("the kuzu engine needs a cgo build")
}
