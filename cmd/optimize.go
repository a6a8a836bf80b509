package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/procsched/api/scheduling"
	"github.com/kilianp07/procsched/app"
	"github.com/kilianp07/procsched/pkg/client"
	"github.com/kilianp07/procsched/pkg/export"
)

var optimizeOpts struct {
	start, end string
	priority   int
	patients   []int64
	procedures []int64
	goal       string
	format     string
	dryRun     bool
	assigner   string
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Schedule pending procedures into available slots",
	RunE:  optimize,
}

func init() {
	f := optimizeCmd.Flags()
	f.StringVar(&optimizeOpts.start, "start", "", "first day of the window (YYYY-MM-DD)")
	f.StringVar(&optimizeOpts.end, "end", "", "last day of the window (YYYY-MM-DD)")
	f.IntVar(&optimizeOpts.priority, "priority", 0, "only schedule procedures with priority <= N (1-5)")
	f.Int64SliceVar(&optimizeOpts.patients, "patient", nil, "restrict to patient ids")
	f.Int64SliceVar(&optimizeOpts.procedures, "procedure", nil, "restrict to procedure ids")
	f.StringVar(&optimizeOpts.goal, "goal", "efficiency", "optimization goal")
	f.StringVar(&optimizeOpts.format, "format", "json", "output format: json or csv")
	f.BoolVar(&optimizeOpts.dryRun, "dry-run", false, "compute the schedule without booking")
	f.StringVar(&optimizeOpts.assigner, "assigner", "", "override optimizer.assigner (greedy or lp)")
	_ = optimizeCmd.MarkFlagRequired("start")
	_ = optimizeCmd.MarkFlagRequired("end")
	addRemoteFlags(optimizeCmd)
	rootCmd.AddCommand(optimizeCmd)
}

func optimize(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	body := scheduling.OptimizeRequest{
		PatientIDs:   optimizeOpts.patients,
		ProcedureIDs: optimizeOpts.procedures,
		StartDate:    optimizeOpts.start,
		EndDate:      optimizeOpts.end,
		OptimizeFor:  optimizeOpts.goal,
		DryRun:       optimizeOpts.dryRun,
	}
	if cmd.Flags().Changed("priority") {
		p := optimizeOpts.priority
		body.PriorityThreshold = &p
	}

	if remote := remoteConfig(); remote.URL != "" {
		res, err := client.New(ctx, remote.URL, remote.Auth).Optimize(ctx, body)
		if err != nil {
			return err
		}
		return export.WriteResult(cmd.OutOrStdout(), optimizeOpts.format, res.ScheduleResult)
	}

	req, err := body.ScheduleRequest()
	if err != nil {
		return err
	}
	if optimizeOpts.assigner != "" {
		cfg.Optimizer.Assigner = optimizeOpts.assigner
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()
	run, err := svc.Optimize(ctx, req, optimizeOpts.dryRun)
	if err != nil {
		return err
	}
	if err := export.WriteResult(cmd.OutOrStdout(), optimizeOpts.format, run.Result); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.ErrOrStderr(), "run %s: %s (score %.3f)\n", run.RunID, run.Result.Message, run.Result.Score)
	return err
}
