package main

import (
	"errors"
	"strconv"

	"NanoVision/server/internal/nutrition"

	"github.com/spf13/cobra"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage model providers and read the audit log (admin only)",
	}

	providers := &cobra.Command{
		Use:   "providers",
		Short: "List configured providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.client.ListProviders(commandContext(cmd))
			if err != nil {
				return loginHint(err)
			}
			return a.printJSON(list)
		},
	}

	templates := &cobra.Command{
		Use:   "templates",
		Short: "List provider templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.client.ProviderTemplates(commandContext(cmd))
			if err != nil {
				return loginHint(err)
			}
			return a.printJSON(list)
		},
	}

	var providerType, name, baseURL, apiKey string
	var priority int
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := nutrition.NewProviderCreate(providerType, name, baseURL, apiKey)
			if cmd.Flags().Changed("priority") {
				req.Priority = priority
			}
			p, err := a.client.CreateProvider(commandContext(cmd), req)
			if err != nil {
				return loginHint(err)
			}
			return a.printJSON(p)
		},
	}
	create.Flags().StringVar(&providerType, "type", nutrition.ProviderOpenAICompatible, "Provider type")
	create.Flags().StringVar(&name, "name", "", "Provider name")
	create.Flags().StringVar(&baseURL, "base-url", "", "Provider base URL")
	create.Flags().StringVar(&apiKey, "api-key", "", "Provider API key")
	create.Flags().IntVar(&priority, "priority", 100, "Priority, lower runs first")
	create.MarkFlagRequired("name")
	create.MarkFlagRequired("base-url")

	var enabled bool
	toggle := &cobra.Command{
		Use:   "enable <id>",
		Short: "Enable or disable a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.client.UpdateProvider(commandContext(cmd), id, nutrition.ProviderUpdate{Enabled: &enabled})
			if err != nil {
				return loginHint(err)
			}
			return a.printJSON(p)
		},
	}
	toggle.Flags().BoolVar(&enabled, "enabled", true, "Set to false to disable")

	test := &cobra.Command{
		Use:   "test <id>",
		Short: "Run a provider health check",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			check, err := a.client.TestProvider(commandContext(cmd), id)
			if err != nil {
				return loginHint(err)
			}
			status := "FAIL"
			if check.OK {
				status = "OK"
			}
			a.printf("provider %d: %s %s\n", check.ProviderID, status, check.Detail)
			return nil
		},
	}

	var limit int
	audit := &cobra.Command{
		Use:   "audit",
		Short: "Show recent audit log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			logs, err := a.client.AuditLogs(commandContext(cmd), limit)
			if err != nil {
				return loginHint(err)
			}
			return a.printJSON(logs)
		},
	}
	audit.Flags().IntVarP(&limit, "limit", "n", 50, "Number of entries")

	cmd.AddCommand(providers, templates, create, toggle, test, audit)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("provider id must be a positive integer")
	}
	return id, nil
}
