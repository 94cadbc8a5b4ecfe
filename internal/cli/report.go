package cli

import (
	"errors"
	"fmt"

	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/internal/domain/staging"
	"github.com/spf13/cobra"
)

func reportCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [photo...]",
		Short: "Analyze photos and create a draft report",
		Long: `Stage the given photos, send them for detection and create a draft report.
Without --lat/--lon the position is read from the first photo carrying GPS data.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, _ := cmd.Flags().GetString("owner")
			lat, _ := cmd.Flags().GetString("lat")
			lon, _ := cmd.Flags().GetString("lon")
			submit, _ := cmd.Flags().GetBool("submit")

			pos, err := positionFlags(lat, lon)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc := env.Service
			sess := svc.NewSession(owner)
			defer svc.Discard(ctx, sess)

			srcs := make([]staging.Source, 0, len(args))
			for _, p := range args {
				srcs = append(srcs, staging.FileSource{Path: p})
			}
			staged, err := svc.Stage(ctx, sess, srcs...)
			if err != nil {
				return fmt.Errorf("failed to stage photos: %w", err)
			}
			fmt.Fprintf(env.Out, "Staged %d photo(s)\n", len(staged))

			draft, err := svc.Analyze(ctx, sess, pos)
			if err != nil {
				return fmt.Errorf("failed to analyze photos: %w", err)
			}
			fmt.Fprintf(env.Out, "%s Created draft %s\n", okMark(), draft.UUID)
			printTicket(env.Out, draft)

			if !submit {
				fmt.Fprintf(env.Out, "\nSubmit with: roadreport submit %s\n", draft.UUID)
				return nil
			}
			if err := svc.Review(ctx, sess); err != nil {
				return err
			}
			done, err := svc.Submit(ctx, sess)
			if err != nil {
				return fmt.Errorf("failed to submit %s: %w", draft.UUID, err)
			}
			fmt.Fprintf(env.Out, "%s Submitted %s at %s\n", okMark(), done.UUID, formatTime(done.SubmittedAt))
			return nil
		},
	}
	cmd.Flags().String("owner", "", "Owner id the report is filed for (required)")
	cmd.Flags().String("lat", "", "Latitude of the defect, e.g. 50.4501")
	cmd.Flags().String("lon", "", "Longitude of the defect, e.g. 30.5234")
	cmd.Flags().Bool("submit", false, "Submit the draft right after it is created")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

// positionFlags returns nil when neither coordinate is given.
func positionFlags(lat, lon string) (*model.Position, error) {
	switch {
	case lat == "" && lon == "":
		return nil, nil
	case lat == "" || lon == "":
		return nil, errors.New("--lat and --lon must be given together")
	}
	pos, err := model.ParsePosition(lat, lon)
	if err != nil {
		return nil, err
	}
	return &pos, nil
}

func submitCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "submit [uuid]",
		Short: "Submit a draft report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := env.Service.SubmitTicket(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to submit %s: %w", args[0], err)
			}
			fmt.Fprintf(env.Out, "%s Submitted %s at %s\n", okMark(), t.UUID, formatTime(t.SubmittedAt))
			return nil
		},
	}
}

func showCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show [uuid]",
		Short: "Show one report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := env.Service.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", args[0], err)
			}
			fmt.Fprintf(env.Out, "Report %s\n", t.UUID)
			printTicket(env.Out, t)
			return nil
		},
	}
}
