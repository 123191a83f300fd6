package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/yaklabco/goscramble/internal/configloader"
	"github.com/yaklabco/goscramble/internal/ui/pretty"
)

func newEnvCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "List supported environment variables",
		Long: `List the environment variables goscramble reads, with a short
description of each. Environment variables override configuration files
but are themselves overridden by command-line flags.`,
		Run: func(cmd *cobra.Command, _ []string) {
			colorMode, _ := cmd.Flags().GetString("color")
			styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, cmd.OutOrStdout()))

			vars := configloader.ListEnvVars()
			names := make([]string, 0, len(vars))
			for name := range vars {
				names = append(names, name)
			}
			sort.Strings(names)

			width := 0
			for _, name := range names {
				if len(name) > width {
					width = len(name)
				}
			}

			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n",
					styles.Name.Render(fmt.Sprintf("%-*s", width, name)),
					styles.Dim.Render(vars[name]))
			}
		},
	}

	return cmd
}
