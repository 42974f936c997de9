package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/compozy/lintcompose/pkg/logger"
	"github.com/compozy/lintcompose/pkg/schemagen"
	"github.com/spf13/afero"
)

func main() {
	outDir := flag.String("out", "./schemas", "output directory for generated schemas")
	flag.Parse()

	absOutDir, err := filepath.Abs(*outDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error converting path to absolute: %v\n", err)
		os.Exit(1)
	}
	log := logger.SetupLogger(os.Stderr, string(logger.InfoLevel), false, false)
	ctx := logger.ContextWithLogger(context.Background(), log)
	if err := schemagen.NewSchemaGenerator(afero.NewOsFs()).Generate(ctx, absOutDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schemas: %v\n", err)
		os.Exit(1)
	}
}
