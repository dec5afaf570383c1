package buildgraph

import (
	"fmt"
	"io"

	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/report"
	"github.com/gruntwork-io/assetflow/internal/session"
	"github.com/gruntwork-io/assetflow/pkg/log"
)

// Plan is the ordered list of build steps of a session. Every step comes after the steps it depends on.
type Plan struct {
	graph    *Graph
	byID     map[asset.ID]*Step
	Steps    []*Step
	Failures []*Failure
	// Excluded are the items no root needs.
	Excluded   []*asset.Item
	Generation uint64
}

// Stale reports whether the session changed since the plan was resolved.
func (plan *Plan) Stale(sess *session.Session) bool {
	return sess.Generation() != plan.Generation
}

// Step returns the step building the asset with id.
func (plan *Plan) Step(id asset.ID) (*Step, bool) {
	step, ok := plan.byID[id]
	return step, ok
}

// Failure returns the error of the asset with id, nil when it did not fail.
func (plan *Plan) Failure(id asset.ID) error {
	for _, failure := range plan.Failures {
		if failure.Item.ID() == id {
			return failure.Err
		}
	}

	return nil
}

// Locations returns the locations of the steps in plan order.
func (plan *Plan) Locations() []string {
	locations := make([]string, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		locations = append(locations, step.Location())
	}

	return locations
}

// Record writes the failures and the exclusions of the plan to the log.
func (plan *Plan) Record(l log.Logger, reportLog *report.Log) {
	for _, failure := range plan.Failures {
		opts := []report.EndOption{
			report.WithAsset(failure.Item.ID().String(), failure.Item.FilePath),
			report.WithError(failure.Err),
		}

		if errors.As(failure.Err, &DependencyFailedError{}) {
			opts = append(opts, report.WithReason(report.ReasonDependencyFailed))
		}

		plan.record(l, reportLog, failure.Item, opts...)
	}

	for _, item := range plan.Excluded {
		plan.record(l, reportLog, item,
			report.WithAsset(item.ID().String(), item.FilePath),
			report.WithResult(report.ResultExcluded),
			report.WithReason(report.ReasonUnreachable))
	}
}

func (plan *Plan) record(l log.Logger, reportLog *report.Log, item *asset.Item, opts ...report.EndOption) {
	if err := reportLog.Record(item.Package+"/"+item.Location, report.StageResolve, opts...); err != nil {
		l.Warnf("Failed to record %s: %v", item.Location, err)
	}
}

// WriteDot is used to emit a GraphViz compatible definition
// for the dependency graph. It can be used to dump a .dot file.
// Failed assets are red, excluded ones gray; runtime edges are dashed, CompileAsset edges dotted.
func (plan *Plan) WriteDot(l log.Logger, w io.Writer) error {
	if _, err := io.WriteString(w, "digraph {\n"); err != nil {
		return errors.New(err)
	}

	defer func() {
		if _, err := io.WriteString(w, "}\n"); err != nil {
			l.Warnf("Failed to close graphviz output: %v", err)
		}
	}()

	for _, n := range plan.graph.nodes {
		style := ""

		switch {
		case !n.included:
			style = " [color=gray]"
		case n.err != nil:
			style = " [color=red]"
		}

		if _, err := fmt.Fprintf(w, "\t%q%s;\n", n.location(), style); err != nil {
			return errors.New(err)
		}

		for _, e := range n.deps {
			target := e.dep.Target.Location
			if e.target != nil {
				target = e.target.location()
			}

			edgeStyle := ""

			switch e.dep.Kind {
			case asset.Runtime:
				edgeStyle = " [style=dashed]"
			case asset.CompileAsset:
				edgeStyle = " [style=dotted]"
			}

			if _, err := fmt.Fprintf(w, "\t%q -> %q%s;\n", n.location(), target, edgeStyle); err != nil {
				return errors.New(err)
			}
		}
	}

	return nil
}

// StepSummary is the serializable view of a step.
type StepSummary struct {
	ID           string   `json:"id"`
	Location     string   `json:"location"`
	Package      string   `json:"package"`
	Status       string   `json:"status"`
	BuildKey     string   `json:"buildKey"`
	Commands     []string `json:"commands,omitempty"`
	Predecessors []string `json:"predecessors,omitempty"`
}

// Summaries returns the serializable view of the steps in plan order.
func (plan *Plan) Summaries() []StepSummary {
	summaries := make([]StepSummary, 0, len(plan.Steps))

	for _, step := range plan.Steps {
		summary := StepSummary{
			ID:       step.Item.ID().String(),
			Location: step.Location(),
			Package:  step.Item.Package,
			Status:   step.Status.String(),
			BuildKey: step.BuildKey.String(),
		}

		for _, cmd := range step.Commands {
			summary.Commands = append(summary.Commands, cmd.Name()+" "+cmd.OutputURL())
		}

		for _, pred := range step.Predecessors {
			summary.Predecessors = append(summary.Predecessors, pred.Location())
		}

		summaries = append(summaries, summary)
	}

	return summaries
}
