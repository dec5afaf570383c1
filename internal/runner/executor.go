package runner

import (
	"context"

	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/buildcache"
	"github.com/gruntwork-io/assetflow/internal/buildgraph"
	"github.com/gruntwork-io/assetflow/internal/compiler"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/session"
	"github.com/gruntwork-io/assetflow/pkg/log"
	"github.com/gruntwork-io/assetflow/telemetry"
)

// Executor runs the commands of a step and publishes their outputs in the build cache.
type Executor struct {
	store buildcache.Store
	sess  *session.Session
}

// NewExecutor returns an executor writing to store.
func NewExecutor(sess *session.Session, store buildcache.Store) *Executor {
	return &Executor{sess: sess, store: store}
}

// Execute runs the commands of step in order. Every output is stored in the cache, then the
// manifest listing them is written under the build key of the step. Reused steps do nothing.
func (executor *Executor) Execute(ctx context.Context, l log.Logger, step *buildgraph.Step) error {
	telemeter := telemetry.TelemeterFromContext(ctx)

	if step.Status == buildgraph.StatusReused {
		telemeter.Count(ctx, "build_step_reused", 1)
		l.Debugf("Build of %s is up to date", step.Location())

		return nil
	}

	env := &environment{
		ctx:      ctx,
		executor: executor,
		step:     step,
		outputs:  make(map[string][]byte, len(step.Commands)),
	}

	manifest := buildcache.NewManifest()

	for _, cmd := range step.Commands {
		if err := ctx.Err(); err != nil {
			return errors.New(err)
		}

		cmdLogger := l.WithField(log.FieldKeyCommand, cmd.Name())
		cmdLogger.Debugf("Writing %s", cmd.OutputURL())

		data, err := cmd.Execute(ctx, env)
		if err != nil {
			cmdLogger.WithError(err).Debugf("Command of %s failed", step.Location())
			return errors.New(CommandError{Command: cmd.Name(), Location: step.Location(), Err: err})
		}

		id, err := buildcache.PutContent(ctx, executor.store, data)
		if err != nil {
			return err
		}

		env.outputs[cmd.OutputURL()] = data
		manifest.Add(cmd.OutputURL(), id)
	}

	if err := buildcache.PutManifest(ctx, executor.store, step.BuildKey, manifest); err != nil {
		return err
	}

	telemeter.Count(ctx, "build_step_executed", 1)

	return nil
}

// environment resolves the inputs of the commands of one step.
type environment struct {
	ctx      context.Context
	executor *Executor
	step     *buildgraph.Step
	outputs  map[string][]byte
}

// Output returns an output of an earlier command of the same step, or of a predecessor.
func (env *environment) Output(url string) ([]byte, error) {
	if data, ok := env.outputs[url]; ok {
		return data, nil
	}

	for _, pred := range env.step.Predecessors {
		manifest, err := buildcache.GetManifest(env.ctx, env.executor.store, pred.BuildKey)
		if err != nil {
			return nil, err
		}

		if id, ok := manifest.Outputs[url]; ok {
			return env.executor.store.Get(env.ctx, id)
		}
	}

	return nil, errors.New(OutputNotFoundError{URL: url, Location: env.step.Location()})
}

// OutputOf finds the predecessor building the asset with id and returns its output with suffix.
func (env *environment) OutputOf(id asset.ID, suffix string) ([]byte, error) {
	for _, pred := range env.step.Predecessors {
		if pred.Item.ID() != id {
			continue
		}

		url := compiler.OutputURL(pred.Item, suffix)

		manifest, err := buildcache.GetManifest(env.ctx, env.executor.store, pred.BuildKey)
		if err != nil {
			return nil, err
		}

		if objectID, ok := manifest.Outputs[url]; ok {
			return env.executor.store.Get(env.ctx, objectID)
		}

		return nil, errors.New(OutputNotFoundError{URL: url, Location: env.step.Location()})
	}

	return nil, errors.New(UnknownDependencyError{ID: id, Location: env.step.Location()})
}

// Source reads a file relative to the directory of the package holding the asset.
func (env *environment) Source(path string) ([]byte, error) {
	return env.executor.sess.ReadSource(env.step.Item, path)
}
