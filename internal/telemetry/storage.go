package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mirepoix/mirepoix/internal/storage"
	"github.com/mirepoix/mirepoix/internal/types"
)

const storageScopeName = "github.com/mirepoix/mirepoix/storage"

// InstrumentedStorage wraps storage.Storage with OTel tracing and metrics.
// Every method gets a span and is counted in mpx.storage.* metrics.
// Use WrapStorage to create one; it returns the original store unchanged when
// telemetry is disabled.
type InstrumentedStorage struct {
	inner  storage.Storage
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

var _ storage.Storage = (*InstrumentedStorage)(nil)

// WrapStorage returns s decorated with OTel instrumentation.
// When telemetry is disabled, s is returned as-is with zero overhead.
func WrapStorage(s storage.Storage) storage.Storage {
	if !Enabled() {
		return s
	}
	m := Meter(storageScopeName)
	ops, _ := m.Int64Counter("mpx.storage.operations",
		metric.WithDescription("Total storage operations executed"),
	)
	dur, _ := m.Float64Histogram("mpx.storage.operation.duration",
		metric.WithDescription("Storage operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("mpx.storage.errors",
		metric.WithDescription("Total storage operation errors"),
	)
	return &InstrumentedStorage{
		inner:  s,
		tracer: Tracer(storageScopeName),
		ops:    ops,
		dur:    dur,
		errs:   errs,
	}
}

// op starts a span and records a metric for the named storage operation.
func (s *InstrumentedStorage) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("db.operation", name)}, attrs...)
	ctx, span := s.tracer.Start(ctx, "storage."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (s *InstrumentedStorage) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs ...attribute.KeyValue) {
	ms := float64(time.Since(start).Milliseconds())
	s.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

func (s *InstrumentedStorage) CreateRecipe(ctx context.Context, recipe *types.Recipe, actor string) error {
	attrs := []attribute.KeyValue{attribute.String("mpx.actor", actor)}
	ctx, span, t := s.op(ctx, "CreateRecipe", attrs...)
	err := s.inner.CreateRecipe(ctx, recipe, actor)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetRecipe(ctx context.Context, id string) (*types.Recipe, error) {
	attrs := []attribute.KeyValue{attribute.String("mpx.recipe.id", id)}
	ctx, span, t := s.op(ctx, "GetRecipe", attrs...)
	v, err := s.inner.GetRecipe(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) ListRecipes(ctx context.Context) ([]*types.Recipe, error) {
	ctx, span, t := s.op(ctx, "ListRecipes")
	v, err := s.inner.ListRecipes(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) DeleteRecipe(ctx context.Context, id string) error {
	attrs := []attribute.KeyValue{attribute.String("mpx.recipe.id", id)}
	ctx, span, t := s.op(ctx, "DeleteRecipe", attrs...)
	err := s.inner.DeleteRecipe(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetStep(ctx context.Context, recipeID string, stepNum int) (*types.Step, error) {
	attrs := stepAttrs(recipeID, stepNum)
	ctx, span, t := s.op(ctx, "GetStep", attrs...)
	v, err := s.inner.GetStep(ctx, recipeID, stepNum)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) ListSteps(ctx context.Context, recipeID string) ([]*types.Step, error) {
	attrs := []attribute.KeyValue{attribute.String("mpx.recipe.id", recipeID)}
	ctx, span, t := s.op(ctx, "ListSteps", attrs...)
	v, err := s.inner.ListSteps(ctx, recipeID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) StepCount(ctx context.Context, recipeID string) (int, error) {
	attrs := []attribute.KeyValue{attribute.String("mpx.recipe.id", recipeID)}
	ctx, span, t := s.op(ctx, "StepCount", attrs...)
	v, err := s.inner.StepCount(ctx, recipeID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetStepDependencies(ctx context.Context, recipeID string, stepNum int) ([]*types.StepDependency, error) {
	attrs := stepAttrs(recipeID, stepNum)
	ctx, span, t := s.op(ctx, "GetStepDependencies", attrs...)
	v, err := s.inner.GetStepDependencies(ctx, recipeID, stepNum)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetStepUsage(ctx context.Context, recipeID string, stepNum int) ([]*types.StepUsage, error) {
	attrs := stepAttrs(recipeID, stepNum)
	ctx, span, t := s.op(ctx, "GetStepUsage", attrs...)
	v, err := s.inner.GetStepUsage(ctx, recipeID, stepNum)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetRecipeEdges(ctx context.Context, recipeID string) ([]*types.RecipeEdge, error) {
	attrs := []attribute.KeyValue{attribute.String("mpx.recipe.id", recipeID)}
	ctx, span, t := s.op(ctx, "GetRecipeEdges", attrs...)
	v, err := s.inner.GetRecipeEdges(ctx, recipeID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetIngredientUses(ctx context.Context, recipeID string, stepNum int) ([]*types.IngredientUse, error) {
	attrs := stepAttrs(recipeID, stepNum)
	ctx, span, t := s.op(ctx, "GetIngredientUses", attrs...)
	v, err := s.inner.GetIngredientUses(ctx, recipeID, stepNum)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetEvents(ctx context.Context, recipeID string, limit int) ([]*types.Event, error) {
	attrs := []attribute.KeyValue{attribute.String("mpx.recipe.id", recipeID)}
	ctx, span, t := s.op(ctx, "GetEvents", attrs...)
	v, err := s.inner.GetEvents(ctx, recipeID, limit)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) SetConfig(ctx context.Context, key, value string) error {
	attrs := []attribute.KeyValue{attribute.String("mpx.config.key", key)}
	ctx, span, t := s.op(ctx, "SetConfig", attrs...)
	err := s.inner.SetConfig(ctx, key, value)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetConfig(ctx context.Context, key string) (string, error) {
	attrs := []attribute.KeyValue{attribute.String("mpx.config.key", key)}
	ctx, span, t := s.op(ctx, "GetConfig", attrs...)
	v, err := s.inner.GetConfig(ctx, key)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

// RunInTransaction wraps the whole transaction in a single span. The
// individual statements inside share the transaction's connection and are
// not traced separately.
func (s *InstrumentedStorage) RunInTransaction(ctx context.Context, fn func(tx storage.Transaction) error) error {
	ctx, span, t := s.op(ctx, "RunInTransaction")
	err := s.inner.RunInTransaction(ctx, fn)
	s.done(ctx, span, t, err)
	return err
}

func (s *InstrumentedStorage) Close() error {
	return s.inner.Close()
}

func stepAttrs(recipeID string, stepNum int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("mpx.recipe.id", recipeID),
		attribute.Int("mpx.step.num", stepNum),
	}
}
