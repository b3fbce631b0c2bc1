package cmd

import (

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/layer/internal/doctor"
)

func newDoctorCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose every layered entry",
		Long: `Check each managed entry in .git/info/exclude:

  layered    the entry hides something and nothing it covers is tracked
  exposed    git tracks a file the entry covers, so it is not hidden
  stale      nothing on disk matches the entry
  redundant  the root .gitignore already has the same rule

Exits 1 when anything is exposed or stale, 2 when nothing is layered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			rep, err := doctor.New(ws).Run(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				if err := encodeJSON(cmd, rep); err != nil {
					return err
				}
			} else {
				doctor.NewPrinter(cmd.OutOrStdout(), !a.useColor(cmd)).Print(rep)
			}
			return exitWith(rep.ExitCode())
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
