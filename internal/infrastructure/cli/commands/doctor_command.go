package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/aiterm/internal/domain"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration, rule table, shell and providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.container()
			if err != nil {
				return err
			}
			if container.DoctorService == nil {
				return errors.New(ErrDoctorServiceUnavailable)
			}

			report, err := container.DoctorService.Run(cmd.Context())

			// Display report even if there were errors
			env.Renderer.HealthReport(cmd.OutOrStdout(), report)

			if err != nil {
				return fmt.Errorf("diagnostics completed with errors: %w", err)
			}
			if report.Worst() == domain.HealthError {
				return errors.New("diagnostics found errors")
			}
			return nil
		},
	}
}
