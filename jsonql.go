// Package jsonql ties the parser, analyzer, planner and executor into a
// single query facade over a caller-supplied storage.Provider.
package jsonql

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jsonql-db/jsonql/aggregation"
	"github.com/jsonql-db/jsonql/analyzer"
	"github.com/jsonql-db/jsonql/config"
	"github.com/jsonql-db/jsonql/errorkinds"
	"github.com/jsonql-db/jsonql/parse"
	"github.com/jsonql-db/jsonql/plan"
	"github.com/jsonql-db/jsonql/rowexec"
	"github.com/jsonql-db/jsonql/storage"
	"github.com/jsonql-db/jsonql/value"
)

// Engine runs queries against a storage.Provider, the way sqle.Engine runs
// queries against a sql.DatabaseProvider.
type Engine struct {
	Provider storage.Provider
	Config   config.Config
	Registry *aggregation.Registry
	Log      *logrus.Entry
}

// New returns an Engine with the default configuration, the built-in
// aggregate registry, and a package-level logrus logger.
func New(provider storage.Provider) *Engine {
	return &Engine{
		Provider: provider,
		Config:   config.Default(),
		Registry: aggregation.NewRegistry(),
		Log:      logrus.WithField("component", "jsonql"),
	}
}

// Query parses, analyzes, plans and executes sql against e's provider. args
// follows spec §6's payload contract: Null for no parameters, a bare scalar
// for a single parameter, or an Array for a positional list.
func (e *Engine) Query(ctx context.Context, sql string, args value.JSON) ([]value.JSON, error) {
	log := e.Log.WithField("sql", sql)

	query, err := parse.Parse(sql)
	if err != nil {
		return nil, errors.Wrap(errorkinds.Other.New(err.Error()), "jsonql: parse")
	}

	analyzed, err := analyzer.Analyze(ctx, query, e.Provider, e.Registry, args, e.epsilonAbs(), e.epsilonRel())
	if err != nil {
		return nil, errors.Wrap(err, "jsonql: analyze")
	}
	log.WithField("aggregate", analyzed.IsAggregate).Debug("analyzed query")

	logical, err := plan.Build(analyzed, e.Registry)
	if err != nil {
		return nil, errors.Wrap(err, "jsonql: plan")
	}
	log.Debug("built logical plan")

	rows, err := rowexec.Execute(ctx, logical, e.Provider, e.epsilonAbs(), e.epsilonRel())
	if err != nil {
		return nil, errors.Wrap(err, "jsonql: execute")
	}

	if e.Config.MaxResultRows > 0 && len(rows) > e.Config.MaxResultRows {
		rows = rows[:e.Config.MaxResultRows]
	}
	log.WithField("rows", len(rows)).Debug("query complete")
	return rows, nil
}

func (e *Engine) epsilonAbs() float64 {
	if e.Config.EpsilonAbs != 0 {
		return e.Config.EpsilonAbs
	}
	return config.DefaultEpsilon
}

func (e *Engine) epsilonRel() float64 {
	if e.Config.EpsilonRel != 0 {
		return e.Config.EpsilonRel
	}
	return config.DefaultEpsilon
}
