package main

import (
	"fmt"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

// program satisfies service.Interface. The managed process runs
// `duecron daemon` directly (see Arguments below), so Start/Stop are
// never invoked in the controlling process.
type program struct{}

func (*program) Start(service.Service) error { return nil }
func (*program) Stop(service.Service) error  { return nil }

// serviceCmd installs or controls duecron's daemon mode as a system
// service (systemd, launchd, etc. — whatever the host provides).
func serviceCmd() *cobra.Command {
	actions := []string{"install", "uninstall", "start", "stop", "restart"}

	cmd := &cobra.Command{
		Use:       "service <action>",
		Short:     "Manage the daemon as a system service",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: actions,
		RunE: func(cmd *cobra.Command, args []string) error {
			arguments := []string{"daemon"}
			if cfgPath, _ := cmd.Flags().GetString("config"); cfgPath != "" {
				arguments = append(arguments, "--config", cfgPath)
			}

			svc, err := service.New(&program{}, &service.Config{
				Name:        "duecron",
				DisplayName: "duecron scheduler",
				Description: "Stamp-backed cron job runner",
				Arguments:   arguments,
			})
			if err != nil {
				return fmt.Errorf("service: %w", err)
			}

			if err := service.Control(svc, args[0]); err != nil {
				return fmt.Errorf("service %s: %w", args[0], err)
			}
			fmt.Printf("Service %s: done\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "Config path baked into the installed service")
	return cmd
}
