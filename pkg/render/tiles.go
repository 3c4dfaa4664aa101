package render

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TileSize is the edge length of the square screen tiles Flush rasterizes
// in parallel.
const TileSize = 64

// tileGrid bins triangle indices by the screen tiles their bounding boxes
// touch. Edge tiles are smaller when the framebuffer is not a multiple of
// TileSize.
type tileGrid struct {
	tilesX, tilesY int
	width, height  int
	bins           [][]int32
}

func (g *tileGrid) reset(width, height int) {
	g.width, g.height = width, height
	g.tilesX = (width + TileSize - 1) / TileSize
	g.tilesY = (height + TileSize - 1) / TileSize
	n := g.tilesX * g.tilesY
	if len(g.bins) != n {
		g.bins = make([][]int32, n)
		return
	}
	for i := range g.bins {
		g.bins[i] = g.bins[i][:0]
	}
}

// rect returns the pixel rectangle of tile i.
func (g *tileGrid) rect(i int) image.Rectangle {
	tx, ty := i%g.tilesX, i/g.tilesX
	return image.Rect(tx*TileSize, ty*TileSize, (tx+1)*TileSize, (ty+1)*TileSize).
		Intersect(image.Rect(0, 0, g.width, g.height))
}

// insert appends idx to every tile that b overlaps.
func (g *tileGrid) insert(idx int32, b image.Rectangle) {
	if b.Empty() {
		return
	}
	x0, y0 := b.Min.X/TileSize, b.Min.Y/TileSize
	x1, y1 := (b.Max.X-1)/TileSize, (b.Max.Y-1)/TileSize
	for ty := max(y0, 0); ty <= min(y1, g.tilesY-1); ty++ {
		for tx := max(x0, 0); tx <= min(x1, g.tilesX-1); tx++ {
			i := ty*g.tilesX + tx
			g.bins[i] = append(g.bins[i], idx)
		}
	}
}

// Submit queues req for the next Flush. The request and the mesh and texture
// it points to must stay unchanged until then.
func (r *Renderer) Submit(req DrawRequest) {
	r.queue = append(r.queue, req)
}

// Pending returns the number of queued requests.
func (r *Renderer) Pending() int { return len(r.queue) }

// Flush draws every queued request. The front end (transform, culling,
// clipping, lighting, GI, counters) runs serially in submission order; the
// resulting triangles are binned into screen tiles and the tiles are
// rasterized concurrently. Each tile draws its triangles in submission order
// and only touches its own pixels, so the image equals drawing the requests
// one by one with DrawMesh.
func (r *Renderer) Flush(ctx context.Context) error {
	r.tris = r.tris[:0]
	for _, req := range r.queue {
		r.setup(req, func(t *rasterTriangle) {
			r.tris = append(r.tris, *t)
		})
	}
	clear(r.queue)
	r.queue = r.queue[:0]
	if len(r.tris) == 0 {
		return nil
	}

	r.tiles.reset(r.fb.Width, r.fb.Height)
	for i := range r.tris {
		r.tiles.insert(int32(i), r.tris[i].bounds())
	}

	workers := r.Options.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, bin := range r.tiles.bins {
		if len(bin) == 0 {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		rect := r.tiles.rect(i)
		g.Go(func() error {
			for _, idx := range bin {
				if err := gctx.Err(); err != nil {
					return err
				}
				rasterize(r.fb, &r.tris[idx], rect)
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	r.log.Debug("flush",
		zap.Int("triangles", len(r.tris)),
		zap.Int("tiles", len(r.tiles.bins)),
		zap.Int("workers", workers),
		zap.Error(err),
	)
	if err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
