//go:generate go run ./main.go

// oapi-codegen 由 openapi.yaml 產生 api/openapi 的 gin strict server
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oapi-codegen/oapi-codegen/v2/pkg/codegen"
	"github.com/oapi-codegen/oapi-codegen/v2/pkg/util"
	"github.com/spf13/pflag"
)

var config = codegen.Configuration{
	PackageName: "openapi",
	Generate: codegen.GenerateOptions{
		GinServer:    true,
		Strict:       true,
		Models:       true,
		EmbeddedSpec: true,
	},
	OutputOptions: codegen.OutputOptions{
		SkipPrune: true,
	},
}

func errExit(format string, args ...interface{}) {
	if !strings.HasSuffix(format, "\n") {
		format = format + "\n"
	}
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func main() {
	inputPath := pflag.String("input", "../../openapi.yaml", "OpenAPI document")
	outputPath := pflag.String("output", "../../api/openapi/openapi_gen.go", "generated file, empty prints to stdout")
	check := pflag.Bool("check", false, "only report whether the generated file is up to date")
	pflag.Parse()

	config = config.UpdateDefaults()
	if err := config.Validate(); err != nil {
		errExit("configuration error: %v", err)
	}

	swagger, err := util.LoadSwaggerWithOverlay(*inputPath, util.LoadSwaggerWithOverlayOpts{Strict: true})
	if err != nil {
		errExit("error loading openapi document %s: %s", *inputPath, err)
	}
	code, err := codegen.Generate(swagger, config)
	if err != nil {
		errExit("error generating code: %s", err)
	}

	switch {
	case *check:
		current, err := os.ReadFile(*outputPath)
		if err != nil {
			errExit("error reading %s: %s", *outputPath, err)
		}
		if !bytes.Equal(current, []byte(code)) {
			errExit("%s is out of date, run go generate ./tools/oapi-codegen", *outputPath)
		}
	case *outputPath == "":
		fmt.Print(code)
	default:
		if err := os.MkdirAll(filepath.Dir(*outputPath), 0o755); err != nil {
			errExit("error creating %s: %s", filepath.Dir(*outputPath), err)
		}
		if err := os.WriteFile(*outputPath, []byte(code), 0o644); err != nil {
			errExit("error writing generated code to file: %s", err)
		}
	}
}
