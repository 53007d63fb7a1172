package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ent0n29/voiceeval/internal/config"
	"github.com/ent0n29/voiceeval/internal/roles"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Print the configured interview roles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		registry, err := roles.NewRegistry(cfg.Roles)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tASSISTANT\tENV")
		for _, def := range cfg.Roles {
			assistant := def.AssistantID
			if assistant == "" {
				assistant = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", def.ID, def.Title, assistant, config.AssistantEnvKey(def.ID))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d of %d roles offered\n", len(registry.List()), len(cfg.Roles))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}
