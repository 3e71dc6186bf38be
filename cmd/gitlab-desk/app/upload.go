package app

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vilaca/gitlab-desk/internal/domain"
)

func newUploadCmd(c *cli) *cobra.Command {
	var req domain.PackageUploadRequest

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a file to a project's generic package registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.LocalFilePath = args[0]
			if req.FileName == "" {
				req.FileName = filepath.Base(args[0])
			}
			resp := c.dispatcher.UploadPackage(cmd.Context(), req)
			return render(c, resp, func(result domain.UploadResult) error {
				_, err := fmt.Fprintln(c.out, result.Message)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&req.InstanceID, "instance", "i", "", "Instance ID (required)")
	cmd.Flags().StringVarP(&req.ProjectID, "project", "p", "", "GitLab project ID or path (required)")
	cmd.Flags().StringVar(&req.PackageName, "package", "", "Package name (required)")
	cmd.Flags().StringVar(&req.PackageVersion, "version", "", "Package version (required)")
	cmd.Flags().StringVar(&req.FileName, "file-name", "", "File name in the registry (default: base name of FILE)")
	for _, name := range []string{"instance", "project", "package", "version"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
