// Package buildgraph turns a loaded session into an ordered, deduplicated build plan.
//
// Resolving enumerates the dependencies of every asset through its compiler, reports
// cycles and missing targets per asset, keeps only what the package roots need, and keys
// every remaining build step by the content it depends on so that unchanged steps are reused.
package buildgraph

import (
	"context"
	"runtime"
	"sort"

	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/buildcache"
	"github.com/gruntwork-io/assetflow/internal/cache"
	"github.com/gruntwork-io/assetflow/internal/compiler"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/hashing"
	"github.com/gruntwork-io/assetflow/internal/registry"
	"github.com/gruntwork-io/assetflow/internal/session"
	"github.com/gruntwork-io/assetflow/pkg/log"
	"github.com/gruntwork-io/assetflow/telemetry"
	"golang.org/x/sync/errgroup"
)

// KeyFlags is the hash policy of the own hash that goes into build keys.
const KeyFlags = hashing.ReferenceAsNull | hashing.ClearExternalReferences

// Options configures a resolver.
type Options struct {
	Registry *registry.Registry
	// Store is consulted for manifests of existing builds. Nil disables reuse.
	Store buildcache.Store
	// Memo is shared with other hash users of the same invocation. Nil uses a private one.
	Memo *cache.Cache[hashing.ObjectID]
	// AllRoots makes every asset a root.
	AllRoots    bool
	Parallelism int
}

// Resolver builds plans. It has no side effects on the session or the store.
type Resolver struct {
	opts   *Options
	hasher *hashing.Hasher
}

// NewResolver returns a resolver.
func NewResolver(opts *Options) *Resolver {
	return &Resolver{
		opts:   opts,
		hasher: hashing.NewHasher(opts.Memo),
	}
}

// Resolve builds the plan of the session. Per asset problems end up in Plan.Failures;
// only cancellation fails the whole resolve.
func (resolver *Resolver) Resolve(ctx context.Context, l log.Logger, sess *session.Session) (*Plan, error) {
	var plan *Plan

	err := telemetry.TelemeterFromContext(ctx).Collect(ctx, "resolve", map[string]any{
		"package": sess.Root().Name,
	}, func(ctx context.Context) error {
		var err error

		plan, err = resolver.resolve(ctx, l, sess)

		return err
	})

	return plan, err
}

func (resolver *Resolver) resolve(ctx context.Context, l log.Logger, sess *session.Session) (*Plan, error) {
	generation := sess.Freeze()
	graph := resolver.buildGraph(sess)

	cyclic := make(map[*node]bool)

	for _, component := range graph.stronglyConnected() {
		if !isCycle(component) {
			continue
		}

		cycleErr := CyclicDependencyError{Cycle: cyclePath(component)}
		l.Debugf("Found %s", cycleErr)

		for _, n := range component {
			cyclic[n] = true
			n.fail(errors.New(cycleErr))
		}
	}

	graph.include(resolver.roots(graph, sess))

	if err := resolver.hashAll(ctx, sess, graph); err != nil {
		return nil, err
	}

	plan := &Plan{graph: graph, Generation: generation, byID: make(map[asset.ID]*Step)}

	for _, n := range graph.topologicalOrder(cyclic) {
		if err := ctx.Err(); err != nil {
			return nil, errors.New(err)
		}

		resolver.plan(ctx, l, plan, n)
	}

	for _, n := range graph.nodes {
		switch {
		case !n.included:
			plan.Excluded = append(plan.Excluded, n.item)
		case n.err != nil:
			plan.Failures = append(plan.Failures, &Failure{Item: n.item, Err: n.err})
		}
	}

	return plan, nil
}

func (resolver *Resolver) buildGraph(sess *session.Session) *Graph {
	items := sess.Items()
	graph := &Graph{nodes: make([]*node, 0, len(items)), byID: make(map[asset.ID]*node, len(items))}

	for _, item := range items {
		n := &node{item: item}
		graph.nodes = append(graph.nodes, n)
		graph.byID[item.ID()] = n
	}

	for _, n := range graph.nodes {
		comp, ok := resolver.opts.Registry.Compiler(n.item.Asset.Type)
		if !ok {
			n.fail(errors.New(CompilerNotFoundError{Location: n.location(), Tag: n.item.Asset.Type}))
			continue
		}

		n.compiler = comp

		deps, err := comp.EnumerateDependencies(n.item)
		if err != nil {
			n.fail(errors.New(CompilerError{Op: "enumerate dependencies of", Location: n.location(), Err: err}))
			continue
		}

		for _, dep := range deps {
			target, ok := graph.byID[dep.Target.ID]
			if !ok {
				n.fail(errors.New(MissingDependencyTargetError{Location: n.location(), Target: dep.Target}))
			}

			n.deps = append(n.deps, edge{dep: dep, target: target})
		}
	}

	return graph
}

// roots returns the root nodes: every node with AllRoots or when no package declares roots,
// otherwise the declared roots that are in the session.
func (resolver *Resolver) roots(graph *Graph, sess *session.Session) []*node {
	ids := sess.RootIDs()
	if resolver.opts.AllRoots || len(ids) == 0 {
		return graph.nodes
	}

	var roots []*node

	for _, id := range ids {
		if n, ok := graph.byID[id]; ok {
			roots = append(roots, n)
		}
	}

	sort.Slice(roots, func(i, j int) bool { return roots[i].item.Ordinal < roots[j].item.Ordinal })

	return roots
}

// hashAll computes the own hash of every included buildable node and every CompileAsset target on the worker pool.
func (resolver *Resolver) hashAll(ctx context.Context, sess *session.Session, graph *Graph) error {
	for _, n := range graph.nodes {
		if !n.included || n.err != nil {
			continue
		}

		n.hashed = true

		for _, e := range n.deps {
			if e.target != nil && e.dep.Kind == asset.CompileAsset {
				e.target.hashed = true
			}
		}
	}

	parallelism := resolver.opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallelism)

	for _, n := range graph.nodes {
		if !n.hashed {
			continue
		}

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return errors.New(err)
			}

			n.own, n.ownErr = resolver.hasher.Hash(groupCtx, n.item.Asset, KeyFlags,
				hashing.WithExternalResolver(sess.IsExternal(n.item.ID())))

			if n.included && n.err == nil {
				n.inputs, n.inputErr = hashInputs(sess, n)
			}

			return nil
		})
	}

	return group.Wait()
}

// hashInputs digests the source files the compiler of n declares.
func hashInputs(sess *session.Session, n *node) ([]keyPart, error) {
	lister, ok := n.compiler.(compiler.InputLister)
	if !ok {
		return nil, nil
	}

	paths, err := lister.InputFiles(n.item)
	if err != nil {
		return nil, errors.New(CompilerError{Op: "list input files of", Location: n.location(), Err: err})
	}

	parts := make([]keyPart, 0, len(paths))

	for _, path := range paths {
		data, err := sess.ReadSource(n.item, path)
		if err != nil {
			return nil, errors.New(InputFileError{Location: n.location(), Path: path, Err: err})
		}

		parts = append(parts, inputPart(path, data))
	}

	return parts, nil
}

// plan computes the build key of a node whose ordering dependencies were planned already,
// then reuses the cached build or asks the compiler for commands.
func (resolver *Resolver) plan(ctx context.Context, l log.Logger, plan *Plan, n *node) {
	if n.err != nil {
		return
	}

	if n.ownErr != nil {
		n.fail(n.ownErr)
		return
	}

	if n.inputErr != nil {
		n.fail(n.inputErr)
		return
	}

	parts := make([]keyPart, 0, len(n.deps)+len(n.inputs))
	parts = append(parts, n.inputs...)
	step := &Step{Item: n.item}

	for _, e := range n.deps {
		step.Dependencies = append(step.Dependencies, e.dep)

		switch e.dep.Kind {
		case asset.Runtime:
			parts = append(parts, runtimePart(e.dep.Target))
		case asset.CompileAsset:
			if e.target.ownErr != nil {
				n.fail(errors.New(DependencyFailedError{Location: n.location(), Dependency: e.target.location()}))
				return
			}

			parts = append(parts, hashPart(asset.CompileAsset, e.target.item.ID(), e.target.own))
		case asset.CompileContent:
			if e.target.step == nil {
				n.fail(errors.New(DependencyFailedError{Location: n.location(), Dependency: e.target.location()}))
				return
			}

			parts = append(parts, hashPart(asset.CompileContent, e.target.item.ID(), e.target.step.BuildKey))
			step.Predecessors = append(step.Predecessors, e.target.step)
		}
	}

	key, err := buildKey(n.item.Asset.Type, n.own, parts)
	if err != nil {
		n.fail(err)
		return
	}

	step.BuildKey = key

	if resolver.opts.Store != nil && buildcache.HasOutputs(ctx, resolver.opts.Store, key) {
		step.Status = StatusReused
		l.Debugf("Reusing build of %s (%s)", n.location(), key)
	} else {
		commands, err := n.compiler.Prepare(ctx, n.item)
		if err != nil {
			n.fail(errors.New(CompilerError{Op: "prepare", Location: n.location(), Err: err}))
			return
		}

		step.Commands = commands
	}

	step.Index = len(plan.Steps)
	n.step = step
	plan.Steps = append(plan.Steps, step)
	plan.byID[n.item.ID()] = step
}
