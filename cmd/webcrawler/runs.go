package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/webcrawler"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	if c.ID != "" {
		return c.show(deps)
	}

	filter := webcrawler.RunFilter{Limit: c.Limit}
	if c.URL != "" {
		filter.RootURL = &c.URL
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webcrawler.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded. Use 'webcrawler crawl --record' to record one.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  depth=%d  downloaded=%d  errors=%d\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.RootURL, r.Depth, len(r.Downloaded), len(r.Errors))
	}

	return nil
}

func (c *RunsCmd) show(deps *Dependencies) error {
	run, err := deps.Runs.FindRunByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webcrawler.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Run %s: %s depth=%d took %s\n",
		run.ID, run.RootURL, run.Depth, run.FinishedAt.Sub(run.StartedAt))
	printResult(deps.Stdout, run.Downloaded, run.Errors)
	return nil
}
