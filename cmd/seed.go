package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/procsched/infra/sqlstore"
	"github.com/kilianp07/procsched/internal/seed"
)

var seedOpts struct {
	seed.Config
	start string
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the record store with a synthetic clinic",
	RunE:  runSeed,
}

func init() {
	f := seedCmd.Flags()
	f.IntVar(&seedOpts.Patients, "patients", 50, "number of patients")
	f.IntVar(&seedOpts.Resources, "resources", 10, "number of rooms")
	f.IntVar(&seedOpts.Days, "days", 30, "days of time slots")
	f.Int64Var(&seedOpts.Seed, "seed", 1, "random seed")
	f.StringVar(&seedOpts.start, "start", "", "first slot day (YYYY-MM-DD), default today")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()
	sc := seedOpts.Config
	if seedOpts.start != "" {
		t, err := time.ParseInLocation("2006-01-02", seedOpts.start, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		sc.Start = t
	}
	snap := seed.Generate(sc)

	st, err := sqlstore.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	if err := st.Load(ctx, snap); err != nil {
		return fmt.Errorf("load seed data: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d patients, %d procedures, %d resources, %d time slots\n",
		len(snap.Patients), len(snap.Procedures), len(snap.Resources), len(snap.Slots))
	return err
}
