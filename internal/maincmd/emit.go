package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/davecgh/go-spew/spew"
	"github.com/mna/mainer"
	"gopkg.in/yaml.v3"

	"github.com/mna/calyx/lang/emit"
	"github.com/mna/calyx/lang/index"
	"github.com/mna/calyx/lang/sink"
)

// envConfig holds the emit command's defaults that may be set via
// environment variables, layered under any flag the user passes
// explicitly.
type envConfig struct {
	Format string `env:"CALYXC_FORMAT" envDefault:"yaml"`
}

func (c *Cmd) Emit(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return printError(stdio, err)
	}
	format := c.Format
	if format == "" {
		format = cfg.Format
	}
	if len(args) == 0 {
		return printError(stdio, fmt.Errorf("emit: a unit description file is required"))
	}
	return EmitFile(ctx, stdio, format, c.Debug, args[0])
}

// EmitFile decodes a YAML unit description from path, runs it through
// the emission pipeline against an in-memory sink and a deterministic
// static index, then prints the resulting sink state in the requested
// format ("yaml" or, with debug set, a go-spew dump instead).
func EmitFile(_ context.Context, stdio mainer.Stdio, format string, debug bool, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return printError(stdio, err)
	}

	var dto unitDTO
	if err := yaml.Unmarshal(raw, &dto); err != nil {
		return printError(stdio, fmt.Errorf("decode %s: %w", path, err))
	}

	unit, err := decodeUnit(&dto)
	if err != nil {
		return printError(stdio, fmt.Errorf("decode %s: %w", path, err))
	}

	s := sink.NewMemSink()
	idx := index.NewStaticIndex()
	if err := emit.EmitUnit(s, unit, idx); err != nil {
		return printError(stdio, err)
	}

	summary := s.Summary()

	if debug {
		spew.Fdump(stdio.Stdout, summary)
		return nil
	}

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(stdio.Stdout)
		defer enc.Close()
		if err := enc.Encode(summary); err != nil {
			return printError(stdio, err)
		}
	default:
		return printError(stdio, fmt.Errorf("emit: unknown format %q", format))
	}
	return nil
}
