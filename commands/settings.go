package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/madan-prog/palletforge/pricing"
)

// NewSettingsCommand returns the settings verb group.
func NewSettingsCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or replace the pricing rate table",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current rate table as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			rates, err := opts.client().GetSettings(cmd.Context())
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(rates)
			if err != nil {
				return fmt.Errorf("marshal rates: %w", err)
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <rates.yaml>",
		Short: "Validate and store a new rate table from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read rate file: %w", err)
			}

			var rates pricing.RateConfiguration
			if err := yaml.Unmarshal(data, &rates); err != nil {
				return fmt.Errorf("parse rate file: %w", err)
			}
			if err := pricing.ValidateRates(rates); err != nil {
				return err
			}

			if err := opts.client().PutSettings(cmd.Context(), rates); err != nil {
				return err
			}
			fmt.Println("Rate table saved; new quotes price against it")
			return nil
		},
	})

	return cmd
}
