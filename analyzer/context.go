package analyzer

import (
	"context"
	"fmt"

	"github.com/jsonql-db/jsonql/aggregation"
	"github.com/jsonql-db/jsonql/errorkinds"
	"github.com/jsonql-db/jsonql/storage"
	"github.com/jsonql-db/jsonql/value"
)

// analysisContext threads the visible->backing bindings, the schema
// provider, the aggregate registry, and the parameter cursor through every
// resolver function, mirroring the teacher's single-context-object style
// (sql.Context threaded through the planner/analyzer stages) and the
// original Rust's AnalysisContext.
type analysisContext struct {
	ctx      context.Context
	bindings []Binding
	schemas  map[string]*value.Schema // visible -> schema, memoized
	provider storage.SchemaProvider
	registry *aggregation.Registry

	params      []value.JSON
	paramCursor int

	epsilonAbs float64
	epsilonRel float64
}

func newAnalysisContext(ctx context.Context, provider storage.SchemaProvider, registry *aggregation.Registry, params []value.JSON, epsAbs, epsRel float64) *analysisContext {
	return &analysisContext{
		ctx:        ctx,
		schemas:    map[string]*value.Schema{},
		provider:   provider,
		registry:   registry,
		params:     params,
		epsilonAbs: epsAbs,
		epsilonRel: epsRel,
	}
}

// addBinding registers a visible -> backing pair, erroring if the visible
// name collides (spec: "unique within a query").
func (c *analysisContext) addBinding(visible, backing string) error {
	for _, b := range c.bindings {
		if b.Visible == visible {
			return fmt.Errorf("duplicate visible collection name %q", visible)
		}
	}
	schema, ok := c.provider.SchemaOf(c.ctx, backing)
	if !ok {
		return errorkinds.UnknownCollection.New(backing)
	}
	c.bindings = append(c.bindings, Binding{Visible: visible, Backing: backing})
	c.schemas[visible] = schema
	return nil
}

func (c *analysisContext) schemaFor(visible string) (*value.Schema, bool) {
	s, ok := c.schemas[visible]
	return s, ok
}

func unknownCollectionErr(name string) error {
	return errorkinds.UnknownCollection.New(name)
}

// nextParam consumes and returns the next positional parameter, erroring if
// exhausted.
func (c *analysisContext) nextParam() (value.JSON, error) {
	if c.paramCursor >= len(c.params) {
		return value.JSON{}, errorkinds.InvalidParameterValue.New(c.paramCursor, "no parameter supplied for this position")
	}
	v := c.params[c.paramCursor]
	c.paramCursor++
	return v, nil
}
