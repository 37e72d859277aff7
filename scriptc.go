package scriptc

import (
	"context"

	"github.com/wippyai/scriptc/ir"
	"github.com/wippyai/scriptc/pipeline"
)

// Optimize runs the default pipeline over g in place.
func Optimize(ctx context.Context, g *ir.Graph) (*pipeline.Result, error) {
	p, err := pipeline.New(pipeline.DefaultConfig(), nil)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, g)
}

// OptimizeText parses src, optimizes it with cfg and returns the printed result.
func OptimizeText(ctx context.Context, src string, cfg pipeline.Config) (string, error) {
	g, err := ir.ParseString(src)
	if err != nil {
		return "", err
	}
	p, err := pipeline.New(cfg, nil)
	if err != nil {
		return "", err
	}
	res, err := p.Run(ctx, g)
	if err != nil {
		return "", err
	}
	return ir.Format(res.Graph), nil
}
