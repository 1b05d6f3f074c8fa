package tracepad

import (
	"context"
	"image"

	"github.com/wbrown/tracepad/edge"
)

// RunEdgeFilter returns the line art for src. It does not touch any pad.
func RunEdgeFilter(src image.Image, s edge.Settings) (*image.RGBA, error) {
	return edge.Extract(src, s)
}

// RunEdgeFilterContext is RunEdgeFilter spread over several goroutines,
// stopping early if ctx is cancelled.
func RunEdgeFilterContext(ctx context.Context, src image.Image, s edge.Settings, opts ...edge.Option) (*image.RGBA, error) {
	return edge.ExtractContext(ctx, src, s, opts...)
}
