package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRulesCommand(ctx *commandContext) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect organization rules",
	}

	rulesCmd.AddCommand(newRulesListCommand(ctx))
	return rulesCmd
}

func newRulesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List organization rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withBackend(func(client *apiClient, deps *directDeps) error {
				var rules []apiRule
				if client != nil {
					listed, err := client.rules()
					if err != nil {
						return err
					}
					rules = listed
				} else {
					stored, err := deps.Store.ListRules(cmd.Context())
					if err != nil {
						return err
					}
					for _, rule := range stored {
						rules = append(rules, apiRule{
							ID:             rule.ID,
							ContentType:    string(rule.ContentType),
							Platform:       rule.Platform,
							FolderTemplate: rule.FolderTemplate,
							FileTemplate:   rule.FileTemplate,
							IsDefault:      rule.IsDefault,
							IsActive:       rule.IsActive,
						})
					}
				}

				out := cmd.OutOrStdout()
				if len(rules) == 0 {
					fmt.Fprintln(out, "No rules defined; defaults are created on first use")
					return nil
				}
				rows := make([][]string, 0, len(rules))
				for _, rule := range rules {
					rows = append(rows, []string{
						strconv.FormatInt(rule.ID, 10),
						rule.ContentType,
						rule.Platform,
						rule.FolderTemplate,
						rule.FileTemplate,
						yesNo(rule.IsDefault),
						yesNo(rule.IsActive),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Type", "Platform", "Folder Template", "File Template", "Default", "Active"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}
