package runner

import (
	"context"
	"sync"

	"github.com/gruntwork-io/assetflow/internal/buildgraph"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/pkg/log"
	"github.com/gruntwork-io/assetflow/telemetry"
	"github.com/puzpuzpuz/xsync/v3"
)

// DefaultParallelism is the number of steps run at once when nothing else is configured.
const DefaultParallelism = 4

// StepRunner executes one step and returns its error.
type StepRunner func(ctx context.Context, step *buildgraph.Step) error

// Outcome is the final state of one step.
type Outcome struct {
	Step   *buildgraph.Step
	Err    error
	Status Status
}

// Controller orchestrates concurrent execution of plan steps.
type Controller struct {
	q           *queue
	runner      StepRunner
	readyCh     chan struct{}
	concurrency int
}

// ControllerOption is a function that modifies a Controller.
type ControllerOption func(*Controller)

// WithRunner sets the StepRunner for the Controller.
func WithRunner(runner StepRunner) ControllerOption {
	return func(c *Controller) {
		c.runner = runner
	}
}

// WithMaxConcurrency sets the concurrency for the Controller.
func WithMaxConcurrency(concurrency int) ControllerOption {
	return func(c *Controller) {
		if concurrency <= 0 {
			concurrency = 1
		}

		c.concurrency = concurrency
	}
}

// WithFailFast stops scheduling new steps after the first failure.
func WithFailFast(failFast bool) ControllerOption {
	return func(c *Controller) {
		c.q.failFast = failFast
	}
}

// NewController creates a Controller for steps, which must be in plan order.
func NewController(steps []*buildgraph.Step, opts ...ControllerOption) *Controller {
	c := &Controller{
		q:           buildQueue(steps, false),
		readyCh:     make(chan struct{}, 1), // buffered to avoid blocking
		concurrency: DefaultParallelism,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run executes the steps and returns their outcomes in plan order, along with an error
// summarizing every step that did not succeed.
func (c *Controller) Run(ctx context.Context, l log.Logger) ([]*Outcome, error) {
	var outcomes []*Outcome

	err := telemetry.TelemeterFromContext(ctx).Collect(ctx, "runner_controller", map[string]any{
		"total_steps": len(c.q.entries),
		"concurrency": c.concurrency,
		"fail_fast":   c.q.failFast,
	}, func(childCtx context.Context) error {
		var err error

		outcomes, err = c.run(childCtx, l)

		return err
	})

	return outcomes, err
}

func (c *Controller) run(ctx context.Context, l log.Logger) ([]*Outcome, error) {
	if c.runner == nil {
		return nil, errors.Errorf("runner controller: runner is not set, cannot run")
	}

	var (
		wg      sync.WaitGroup
		sem     = make(chan struct{}, c.concurrency)
		results = xsync.NewMapOf[*buildgraph.Step, error]()
	)

	l.Debugf("Runner controller: starting with %d steps, concurrency %d", len(c.q.entries), c.concurrency)

	for {
		if ctx.Err() != nil {
			c.q.cancel()
			break
		}

		for _, e := range c.q.getReady(c.concurrency - len(sem)) {
			l.Debugf("Runner controller: running %s", e.step.Location())

			sem <- struct{}{}

			wg.Add(1)

			go func(ent *entry) {
				defer func() {
					<-sem
					wg.Done()

					select {
					case c.readyCh <- struct{}{}:
					default:
					}
				}()

				err := c.runner(ctx, ent.step)
				results.Store(ent.step, err)

				if err != nil {
					l.Debugf("Runner controller: %s failed", ent.step.Location())
				} else {
					l.Debugf("Runner controller: %s succeeded", ent.step.Location())
				}

				c.q.done(ent, err)
			}(e)
		}

		if c.q.empty() {
			break
		}

		select {
		case <-c.readyCh:
		case <-ctx.Done():
		}
	}

	wg.Wait()

	return c.collect(ctx, results)
}

func (c *Controller) collect(ctx context.Context, results *xsync.MapOf[*buildgraph.Step, error]) ([]*Outcome, error) {
	var (
		outcomes     = make([]*Outcome, 0, len(c.q.entries))
		errCollector = &errors.MultiError{}
	)

	for _, e := range c.q.entries {
		outcome := &Outcome{Step: e.step, Status: e.status}

		if err, ok := results.Load(e.step); ok {
			outcome.Err = err
		}

		switch e.status {
		case StatusAncestorFailed:
			outcome.Err = errors.New(StepEarlyExitError{Location: e.step.Location(), FailedDependency: c.q.failedDependency(e)})
		case StatusFailFast:
			outcome.Err = errors.New(StepEarlyExitError{Location: e.step.Location()})
		case StatusCanceled:
			outcome.Err = errors.New(ctx.Err())
		}

		if outcome.Err != nil {
			errCollector = errCollector.Append(outcome.Err)
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes, errCollector.ErrorOrNil()
}
