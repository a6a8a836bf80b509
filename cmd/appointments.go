package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/procsched/core/model"
	"github.com/kilianp07/procsched/core/store"
	"github.com/kilianp07/procsched/infra/sqlstore"
	"github.com/kilianp07/procsched/pkg/client"
	"github.com/kilianp07/procsched/pkg/export"
)

var listOpts struct {
	patient, resource int64
	start, end        string
	status            string
	skip, limit       int
	format            string
}

var appointmentsCmd = &cobra.Command{
	Use:     "appointments",
	Aliases: []string{"appt"},
	Short:   "Inspect and cancel appointments",
}

var appointmentsListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List appointments",
	RunE:  listAppointments,
}

var appointmentsCancelCmd = &cobra.Command{
	Use:   "cancel ID",
	Short: "Cancel an appointment and reopen its slot",
	Args:  cobra.ExactArgs(1),
	RunE:  cancelAppointment,
}

func init() {
	f := appointmentsListCmd.Flags()
	f.Int64Var(&listOpts.patient, "patient", 0, "patient id")
	f.Int64Var(&listOpts.resource, "resource", 0, "resource id")
	f.StringVar(&listOpts.start, "start", "", "from day (YYYY-MM-DD)")
	f.StringVar(&listOpts.end, "end", "", "until day (YYYY-MM-DD)")
	f.StringVar(&listOpts.status, "status", "", "scheduled, completed or cancelled")
	f.IntVar(&listOpts.skip, "skip", 0, "rows to skip")
	f.IntVar(&listOpts.limit, "limit", store.DefaultListLimit, "maximum rows")
	f.StringVar(&listOpts.format, "format", "json", "output format: json or csv")
	addRemoteFlags(appointmentsListCmd)
	addRemoteFlags(appointmentsCancelCmd)
	appointmentsCmd.AddCommand(appointmentsListCmd, appointmentsCancelCmd)
	rootCmd.AddCommand(appointmentsCmd)
}

func parseDay(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
	if err != nil {
		return t, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return t, nil
}

func listAppointments(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()
	f := store.AppointmentFilter{
		PatientID:  listOpts.patient,
		ResourceID: listOpts.resource,
		Status:     model.AppointmentStatus(listOpts.status),
		Offset:     listOpts.skip,
		Limit:      listOpts.limit,
	}
	var err error
	if f.StartDate, err = parseDay("start", listOpts.start); err != nil {
		return err
	}
	if f.EndDate, err = parseDay("end", listOpts.end); err != nil {
		return err
	}

	var list []model.Appointment
	if remote := remoteConfig(); remote.URL != "" {
		list, err = client.New(ctx, remote.URL, remote.Auth).Appointments(ctx, f)
	} else {
		var st *sqlstore.Store
		if st, err = sqlstore.Open(ctx, cfg.Store); err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		list, err = st.ListAppointments(ctx, f)
	}
	if err != nil {
		return err
	}
	return export.WriteAppointments(cmd.OutOrStdout(), listOpts.format, list)
}

func cancelAppointment(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid appointment id %q", args[0])
	}
	var a model.Appointment
	if remote := remoteConfig(); remote.URL != "" {
		a, err = client.New(ctx, remote.URL, remote.Auth).Cancel(ctx, id)
	} else {
		// The service publishes the cancellation to the notifier.
		svc, serr := newLocalService(ctx)
		if serr != nil {
			return serr
		}
		defer func() { _ = svc.Close() }()
		a, err = svc.Cancel(ctx, id)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "appointment %d cancelled, slot %d reopened\n", a.ID, a.SlotID)
	return err
}
