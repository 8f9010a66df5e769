package main

import (
	"fmt"

	"github.com/Harshitk-cp/mentora/internal/service"
	"github.com/spf13/cobra"
)

func newTipsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tips <service>",
		Short: "Print general wellbeing tips for a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := lookup(args[0], service.VariantCLI)
			if err != nil {
				return err
			}
			for i, tip := range def.Tips {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, tip)
			}
			return nil
		},
	}
}
