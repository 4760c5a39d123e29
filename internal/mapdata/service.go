package mapdata

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jengzang/travel-atlas-go/internal/apperror"
	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/spatial"
)

const tracerName = "github.com/jengzang/travel-atlas-go/internal/mapdata"

// Options configures a Service.
type Options struct {
	// ReferenceTTL is how long the reference snapshot stays valid. Zero keeps
	// it until Invalidate.
	ReferenceTTL time.Duration
	// POITTL is how long a viewport's POIs stay valid. Zero uses 5 minutes.
	POITTL time.Duration
	// POIMaxEntries bounds the number of cached viewports. Zero uses 1024.
	POIMaxEntries int
	Logger        *zap.Logger
	Metrics       *Metrics
	Now           func() time.Time
}

// MapData is the combined result for one quantized viewport.
type MapData struct {
	Key       string
	Bounds    spatial.QuantizedBounds
	Reference *Reference
	POIs      []*models.POI
}

// Service caches map data in front of a Backend. It performs no retries;
// backend failures are returned as apperror.BackendError and never cached.
type Service struct {
	backend Backend
	ref     *memo[*Reference]
	pois    *poiCache
	group   singleflight.Group
	log     *zap.Logger
	metrics *Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

// NewService creates a map data service reading from backend.
func NewService(backend Backend, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		backend: backend,
		ref:     &memo[*Reference]{ttl: opts.ReferenceTTL, now: now},
		pois:    newPOICache(opts.POITTL, opts.POIMaxEntries, now),
		log:     log.Named("mapdata"),
		metrics: opts.Metrics,
		tracer:  otel.Tracer(tracerName),
		now:     now,
	}
}

// Load returns the reference snapshot and the POIs of the quantized form of
// bounds. Both are fetched concurrently; either failing fails the load.
func (s *Service) Load(ctx context.Context, bounds spatial.MapBounds) (*MapData, error) {
	q := spatial.Quantize(bounds)

	var (
		ref  *Reference
		pois []*models.POI
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ref, err = s.Reference(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		pois, err = s.POIs(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &MapData{Key: q.Key(), Bounds: q, Reference: ref, POIs: pois}, nil
}

// Reference returns the region/monthly-data snapshot, loading it on first use.
// Concurrent first calls share one load; a failed load leaves the cache empty
// so the next call retries.
func (s *Service) Reference(ctx context.Context) (*Reference, error) {
	if ref, ok := s.ref.get(); ok {
		s.metrics.lookup(cacheReference, resultHit)
		return ref, nil
	}

	gen := s.ref.generation()
	v, shared, err := s.do(ctx, fmt.Sprintf("%s:%d", cacheReference, gen), func(ctx context.Context) (interface{}, error) {
		if ref, ok := s.ref.get(); ok {
			return ref, nil
		}
		return s.loadReference(ctx, gen)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.lookup(cacheReference, missResult(shared))
	return v.(*Reference), nil
}

func (s *Service) loadReference(ctx context.Context, gen uint64) (*Reference, error) {
	ctx, span := s.tracer.Start(ctx, "mapdata.load_reference")
	defer span.End()

	regions, err := s.backend.ListRegions(ctx)
	s.metrics.fetch("regions", err)
	if err != nil {
		return nil, s.fail(span, "list regions", err)
	}
	rows, err := s.backend.ListMonthlyData(ctx)
	s.metrics.fetch("monthly_data", err)
	if err != nil {
		return nil, s.fail(span, "list monthly data", err)
	}

	ref := Assemble(regions, rows, s.now())
	span.SetAttributes(
		attribute.Int("mapdata.regions", len(ref.Regions)),
		attribute.Int("mapdata.monthly_rows", len(rows)),
	)
	if ref.Orphans > 0 {
		s.log.Warn("monthly rows reference unknown regions", zap.Int("rows", ref.Orphans))
	}
	if skipped := ref.Index.Skipped(); len(skipped) > 0 {
		s.log.Warn("regions with unusable geometry", zap.Strings("regions", skipped))
	}
	if !s.ref.store(ref, gen) {
		s.log.Debug("reference invalidated during load; not cached")
	}
	s.log.Info("reference data loaded", zap.Int("regions", len(ref.Regions)), zap.Int("monthly_rows", len(rows)))
	return ref, nil
}

// POIs returns the POIs inside q, filtered by the zoom priority ceiling.
// Concurrent calls for the same key share one backend call.
func (s *Service) POIs(ctx context.Context, q spatial.QuantizedBounds) ([]*models.POI, error) {
	key := q.Key()
	if pois, ok := s.pois.get(key); ok {
		s.metrics.lookup(cachePOI, resultHit)
		return pois, nil
	}

	gen := s.pois.generation()
	v, shared, err := s.do(ctx, fmt.Sprintf("%s:%d:%s", cachePOI, gen, key), func(ctx context.Context) (interface{}, error) {
		if pois, ok := s.pois.get(key); ok {
			return pois, nil
		}
		return s.fetchPOIs(ctx, q, gen)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.lookup(cachePOI, missResult(shared))
	return v.([]*models.POI), nil
}

func (s *Service) fetchPOIs(ctx context.Context, q spatial.QuantizedBounds, gen uint64) ([]*models.POI, error) {
	query := QueryFor(q)
	ctx, span := s.tracer.Start(ctx, "mapdata.fetch_pois", trace.WithAttributes(
		attribute.String("mapdata.key", q.Key()),
		attribute.Int("mapdata.zoom", q.Zoom),
	))
	defer span.End()
	if query.MaxPriority != nil {
		span.SetAttributes(attribute.Int("mapdata.max_priority", *query.MaxPriority))
	}

	pois, err := s.backend.ListPOIsInBounds(ctx, query)
	s.metrics.fetch("pois", err)
	if err != nil {
		return nil, s.fail(span, "list pois", err)
	}
	if pois == nil {
		pois = []*models.POI{}
	}
	span.SetAttributes(attribute.Int("mapdata.pois", len(pois)))

	s.pois.put(q.Key(), pois, gen)
	s.metrics.poiEntries(s.pois.size())
	return pois, nil
}

// Invalidate drops both caches.
func (s *Service) Invalidate() {
	s.InvalidateReference()
	s.InvalidatePOIs()
}

// InvalidateReference drops the reference snapshot. A load already in flight
// still answers its waiters but is not cached.
func (s *Service) InvalidateReference() {
	s.ref.invalidate()
	s.log.Info("reference cache invalidated")
}

// InvalidatePOIs drops every cached viewport.
func (s *Service) InvalidatePOIs() {
	s.pois.invalidate()
	s.metrics.poiEntries(0)
	s.log.Info("poi cache invalidated")
}

// do runs fn once per key among concurrent callers. fn runs detached from the
// caller's cancellation so one caller giving up does not fail the others.
func (s *Service) do(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, bool, error) {
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		return res.Val, res.Shared, res.Err
	}
}

func (s *Service) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.log.Error("backend fetch failed", zap.String("op", op), zap.Error(err))
	return apperror.Backend(op, err)
}

func missResult(shared bool) string {
	if shared {
		return resultShared
	}
	return resultMiss
}
