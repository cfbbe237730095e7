package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/impred/pkg/config"
)

// configCommand creates the config command for working with engine
// configuration files.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print or check engine configurations",
	}

	cmd.AddCommand(c.configDefaultCommand())
	cmd.AddCommand(c.configCheckCommand())

	return cmd
}

// configDefaultCommand prints the built-in preset as a starting point for
// custom configurations.
func (c *CLI) configDefaultCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "default",
		Short: "Print the built-in preset as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return config.Write(c.Out, config.Default())
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := config.Write(f, config.Default()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			printSuccess("Wrote default configuration")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func (c *CLI) configCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [config.toml]",
		Short: "Validate a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Out, "%s: ok (%d iterations, %d forces, %d constraints, %d pre-movement, %d post-processing)\n",
				args[0], cfg.Iterations, len(cfg.Forces), len(cfg.Constraints), len(cfg.PreMovement), len(cfg.PostProcessing))
			return nil
		},
	}
}
