// Package runner executes build plans: steps run on a bounded pool once every predecessor
// succeeded, and their outputs are published in the build cache under the step's build key.
package runner

import (
	"context"

	"github.com/gruntwork-io/assetflow/internal/buildcache"
	"github.com/gruntwork-io/assetflow/internal/buildgraph"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/report"
	"github.com/gruntwork-io/assetflow/internal/session"
	"github.com/gruntwork-io/assetflow/pkg/log"
)

// Options configures a build run.
type Options struct {
	Store       buildcache.Store
	Report      *report.Log
	Parallelism int
	FailFast    bool
}

// Run executes plan. The plan must have been resolved against the current state of sess.
// Every step gets a build entry in the report log when one is given.
func Run(ctx context.Context, l log.Logger, sess *session.Session, plan *buildgraph.Plan, opts *Options) ([]*Outcome, error) {
	if plan.Stale(sess) {
		return nil, errors.New(StalePlanError{Resolved: plan.Generation, Current: sess.Generation()})
	}

	executor := NewExecutor(sess, opts.Store)

	controller := NewController(plan.Steps,
		WithMaxConcurrency(opts.Parallelism),
		WithFailFast(opts.FailFast),
		WithRunner(func(ctx context.Context, step *buildgraph.Step) error {
			name := entryName(step)
			stepLogger := l.WithField(log.FieldKeyAsset, name)

			if opts.Report != nil {
				entry := report.NewEntry(name, report.StageBuild)
				if err := opts.Report.AddEntry(entry); err != nil {
					stepLogger.Warnf("Failed to record build of %s: %v", name, err)
				}
			}

			err := executor.Execute(ctx, stepLogger, step)

			if opts.Report != nil {
				endOpts := []report.EndOption{report.WithAsset(step.Item.ID().String(), step.Item.FilePath)}

				switch {
				case err != nil:
					endOpts = append(endOpts, report.WithError(err))
				case step.Status == buildgraph.StatusReused:
					endOpts = append(endOpts, report.WithResult(report.ResultReused))
				}

				if endErr := opts.Report.EndEntry(name, report.StageBuild, endOpts...); endErr != nil {
					stepLogger.Warnf("Failed to record build of %s: %v", name, endErr)
				}
			}

			return err
		}))

	outcomes, err := controller.Run(ctx, l)

	if opts.Report != nil {
		recordSkipped(l, opts.Report, outcomes)
	}

	return outcomes, err
}

// recordSkipped records the steps that never ran.
func recordSkipped(l log.Logger, reportLog *report.Log, outcomes []*Outcome) {
	for _, outcome := range outcomes {
		var reason report.Reason

		switch outcome.Status {
		case StatusAncestorFailed:
			reason = report.ReasonDependencyFailed
		case StatusFailFast:
			reason = report.ReasonEarlyExit
		case StatusCanceled:
			reason = report.ReasonCanceled
		default:
			continue
		}

		step := outcome.Step
		if err := reportLog.Record(entryName(step), report.StageBuild,
			report.WithAsset(step.Item.ID().String(), step.Item.FilePath),
			report.WithResult(report.ResultSkipped),
			report.WithReason(reason)); err != nil {
			l.Warnf("Failed to record build of %s: %v", step.Location(), err)
		}
	}
}

func entryName(step *buildgraph.Step) string {
	return step.Item.Package + "/" + step.Location()
}
