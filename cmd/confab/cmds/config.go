package cmds

import (
	"fmt"

	"github.com/go-go-golems/confab/pkg/settings"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := settings.Get().YAML()
			if err != nil {
				return err
			}
			if f := viper.ConfigFileUsed(); f != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", f)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
