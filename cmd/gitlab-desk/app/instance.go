package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vilaca/gitlab-desk/internal/domain"
)

func newInstanceCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "instance",
		Aliases: []string{"instances"},
		Short:   "Manage configured GitLab instances",
	}
	cmd.AddCommand(newInstanceAddCmd(c), newInstanceListCmd(c), newInstanceUpdateCmd(c), newInstanceRemoveCmd(c))
	return cmd
}

func newInstanceAddCmd(c *cli) *cobra.Command {
	var name, url, username, token string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a GitLab instance",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			profile, err := c.registry.AddInstance(name, url, username, token)
			if err != nil {
				return err
			}
			if c.output == "json" {
				return writeJSON(c.out, profile)
			}
			_, err = fmt.Fprintf(c.out, "Added instance %s (%s)\n", profile.Name, profile.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&url, "url", domain.DefaultInstanceURL, "Base URL of the instance")
	cmd.Flags().StringVar(&username, "username", "", "Username, informational only")
	cmd.Flags().StringVar(&token, "token", "", "Personal, project or group access token")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newInstanceUpdateCmd(c *cli) *cobra.Command {
	var name, url, username, token string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a GitLab instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := c.registry.Instance(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				profile.Name = name
			}
			if cmd.Flags().Changed("url") {
				profile.URL = url
			}
			if cmd.Flags().Changed("username") {
				profile.Username = username
			}
			profile.Token = token
			if err := c.registry.UpdateInstance(profile); err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.out, "Updated instance %s\n", profile.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&url, "url", "", "Base URL of the instance")
	cmd.Flags().StringVar(&username, "username", "", "Username, informational only")
	cmd.Flags().StringVar(&token, "token", "", "New access token (kept when empty)")
	return cmd
}

func newInstanceListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured GitLab instances",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			instances, err := c.registry.GetInstances()
			if err != nil {
				return err
			}
			if c.output == "json" {
				return writeJSON(c.out, instances)
			}
			rows := make([][]string, 0, len(instances))
			for _, p := range instances {
				rows = append(rows, []string{p.ID, p.Name, p.BaseURL(), p.Username, yesNo(p.Token != "")})
			}
			return writeTable(c.out, []string{"ID", "Name", "URL", "Username", "Token"}, rows)
		},
	}
}

func newInstanceRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Remove a GitLab instance and its saved projects",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := c.registry.RemoveInstance(args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(c.out, "Removed instance %s\n", args[0])
			return err
		},
	}
}
