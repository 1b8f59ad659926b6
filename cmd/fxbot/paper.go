package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fxlab/fxbot/pkg/reporting"
)

func newPaperCmd(opts *rootOptions) *cobra.Command {
	var (
		batch    int
		interval time.Duration
		follow   bool
	)

	cmd := &cobra.Command{
		Use:   "paper",
		Short: "Replay the configured data incrementally, bar by bar",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := opts.orchestrator()
			if err != nil {
				return err
			}
			session, err := orch.PaperSession()
			if err != nil {
				return err
			}

			for {
				st, err := session.Advance(batch)
				if err != nil {
					return err
				}
				opts.log.Info("advanced",
					zap.Int("bar", st.Ptr),
					zap.Int("total", st.Total),
					zap.Time("last", st.LastTimestamp),
					zap.Float64("position", st.Position),
					zap.Float64("equity", st.Equity))

				if st.Ptr >= st.Total {
					break
				}
				if !follow {
					break
				}
				time.Sleep(interval)
			}

			res, err := session.Result()
			if err != nil {
				return err
			}
			st, err := session.Status()
			if err != nil {
				return err
			}
			reporting.NewConsoleReporter().PrintSummary(res.StartCash, res.EndCash, st.Summary)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&batch, "steps", 1, "bars to process per advance")
	f.BoolVar(&follow, "follow", false, "keep advancing until the data is exhausted")
	f.DurationVar(&interval, "interval", time.Second, "delay between advances with --follow")
	return cmd
}
