package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vilaca/gitlab-desk/internal/domain"
)

func newProjectCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Search GitLab projects and manage saved projects",
	}
	cmd.AddCommand(newProjectSearchCmd(c), newProjectListCmd(c), newProjectSaveCmd(c), newProjectRemoveCmd(c))
	return cmd
}

func projectRows(projects []domain.ProjectSummary) [][]string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{p.ID, p.InstanceID, p.ExternalProjectID, p.DisplayName})
	}
	return rows
}

var projectHeader = []string{"ID", "Instance", "Project ID", "Name"}

func newProjectSearchCmd(c *cli) *cobra.Command {
	var instanceID string
	var save bool

	cmd := &cobra.Command{
		Use:   "search [QUERY...]",
		Short: "Search projects you are a member of",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := c.dispatcher.SearchProjects(cmd.Context(), instanceID, strings.Join(args, " "))
			if resp.OK() && save {
				for i, p := range resp.Data {
					saved, err := c.registry.SaveProject(p)
					if err != nil {
						return err
					}
					resp.Data[i] = saved
				}
			}
			return render(c, resp, func(projects []domain.ProjectSummary) error {
				return writeTable(c.out, projectHeader, projectRows(projects))
			})
		},
	}
	cmd.Flags().StringVarP(&instanceID, "instance", "i", "", "Instance ID (required)")
	cmd.Flags().BoolVar(&save, "save", false, "Save every result to the local project list")
	_ = cmd.MarkFlagRequired("instance")
	return cmd
}

func newProjectListCmd(c *cli) *cobra.Command {
	var instanceID string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved projects",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			projects, err := c.registry.GetProjects()
			if err != nil {
				return err
			}
			if instanceID != "" {
				filtered := projects[:0]
				for _, p := range projects {
					if p.InstanceID == instanceID {
						filtered = append(filtered, p)
					}
				}
				projects = filtered
			}
			if c.output == "json" {
				return writeJSON(c.out, projects)
			}
			return writeTable(c.out, projectHeader, projectRows(projects))
		},
	}
	cmd.Flags().StringVarP(&instanceID, "instance", "i", "", "Only list projects of this instance")
	return cmd
}

func newProjectSaveCmd(c *cli) *cobra.Command {
	var project domain.ProjectSummary

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save or update a project in the local project list",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			saved, err := c.registry.SaveProject(project)
			if err != nil {
				return err
			}
			if c.output == "json" {
				return writeJSON(c.out, saved)
			}
			_, err = fmt.Fprintf(c.out, "Saved project %s (%s)\n", saved.DisplayName, saved.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&project.ID, "id", "", "ID of a saved project to replace")
	cmd.Flags().StringVarP(&project.InstanceID, "instance", "i", "", "Instance ID (required)")
	cmd.Flags().StringVarP(&project.ExternalProjectID, "project", "p", "", "GitLab project ID or path (required)")
	cmd.Flags().StringVar(&project.DisplayName, "name", "", "Display name")
	_ = cmd.MarkFlagRequired("instance")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newProjectRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Remove a saved project",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := c.registry.RemoveProject(args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(c.out, "Removed project %s\n", args[0])
			return err
		},
	}
}
