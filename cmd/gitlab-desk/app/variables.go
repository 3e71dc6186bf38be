package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vilaca/gitlab-desk/internal/domain"
	"github.com/vilaca/gitlab-desk/internal/envfile"
	"github.com/vilaca/gitlab-desk/internal/service"
)

// target identifies the project a variable command works on.
type target struct {
	instanceID string
	projectID  string
}

func (t *target) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&t.instanceID, "instance", "i", "", "Instance ID (required)")
	cmd.Flags().StringVarP(&t.projectID, "project", "p", "", "GitLab project ID or path (required)")
	_ = cmd.MarkFlagRequired("instance")
	_ = cmd.MarkFlagRequired("project")
}

func newVariableCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "var",
		Aliases: []string{"vars", "variable", "variables"},
		Short:   "Manage project CI/CD variables",
	}
	cmd.AddCommand(
		newVariableListCmd(c),
		newVariableCreateCmd(c),
		newVariableUpdateCmd(c),
		newVariableDeleteCmd(c),
		newVariableImportCmd(c),
	)
	return cmd
}

func variableRows(variables []domain.CIVariable, showValues bool) [][]string {
	rows := make([][]string, 0, len(variables))
	for _, v := range variables {
		value := v.Value
		if v.Masked && !showValues {
			value = "[masked]"
		}
		rows = append(rows, []string{v.Key, value, v.VariableType, v.EnvironmentScope, yesNo(v.Protected), yesNo(v.Masked), v.Description})
	}
	return rows
}

var variableHeader = []string{"Key", "Value", "Type", "Scope", "Protected", "Masked", "Description"}

func newVariableListCmd(c *cli) *cobra.Command {
	var t target
	var showValues bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the CI/CD variables of a project",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp := c.dispatcher.ListVariables(cmd.Context(), t.instanceID, t.projectID)
			return render(c, resp, func(variables []domain.CIVariable) error {
				return writeTable(c.out, variableHeader, variableRows(variables, showValues))
			})
		},
	}
	t.addFlags(cmd)
	cmd.Flags().BoolVar(&showValues, "show-values", false, "Print values of masked variables")
	return cmd
}

// variableFlags collects the writable fields of a variable.
type variableFlags struct {
	v         domain.CIVariable
	valueFile string
}

func (f *variableFlags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.v.Value, "value", "", "Variable value")
	cmd.Flags().StringVar(&f.valueFile, "value-file", "", "Read the value from a file (- for stdin)")
	cmd.Flags().StringVar(&f.v.VariableType, "type", domain.VariableTypeEnvVar, "Variable type (env_var, file)")
	cmd.Flags().BoolVar(&f.v.Protected, "protected", false, "Only expose to protected branches and tags")
	cmd.Flags().BoolVar(&f.v.Masked, "masked", false, "Mask the value in job logs")
	cmd.Flags().StringVar(&f.v.EnvironmentScope, "scope", domain.ScopeAll, "Environment scope")
	cmd.Flags().StringVar(&f.v.Description, "description", "", "Description")
}

func (f *variableFlags) variable(cmd *cobra.Command, key string) (domain.CIVariable, error) {
	v := f.v
	v.Key = key
	if v.VariableType != domain.VariableTypeEnvVar && v.VariableType != domain.VariableTypeFile {
		return v, fmt.Errorf("invalid variable type %q (want %s or %s)", v.VariableType, domain.VariableTypeEnvVar, domain.VariableTypeFile)
	}
	if f.valueFile != "" {
		data, err := readInput(cmd, f.valueFile)
		if err != nil {
			return v, err
		}
		v.Value = string(data)
	}
	return v, nil
}

// merge starts from the server copy and applies only the flags set on the command line.
func (f *variableFlags) merge(cmd *cobra.Command, current, v domain.CIVariable) domain.CIVariable {
	merged := current.WithDefaults()
	flags := cmd.Flags()
	if flags.Changed("value") || flags.Changed("value-file") {
		merged.Value = v.Value
	}
	if flags.Changed("type") {
		merged.VariableType = v.VariableType
	}
	if flags.Changed("protected") {
		merged.Protected = v.Protected
	}
	if flags.Changed("masked") {
		merged.Masked = v.Masked
	}
	if flags.Changed("description") {
		merged.Description = v.Description
	}
	return merged
}

func findVariable(variables []domain.CIVariable, id domain.VariableIdentity) (domain.CIVariable, bool) {
	for _, v := range variables {
		if v.Identity() == id {
			return v, true
		}
	}
	return domain.CIVariable{}, false
}

func newVariableCreateCmd(c *cli) *cobra.Command {
	var t target
	var f variableFlags

	cmd := &cobra.Command{
		Use:   "create KEY",
		Short: "Create a CI/CD variable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := f.variable(cmd, args[0])
			if err != nil {
				return err
			}
			resp := c.dispatcher.CreateVariable(cmd.Context(), t.instanceID, t.projectID, v)
			return render(c, resp, func(created domain.CIVariable) error {
				return writeTable(c.out, variableHeader, variableRows([]domain.CIVariable{created}, false))
			})
		},
	}
	t.addFlags(cmd)
	f.addFlags(cmd)
	return cmd
}

func newVariableUpdateCmd(c *cli) *cobra.Command {
	var t target
	var f variableFlags

	cmd := &cobra.Command{
		Use:   "update KEY",
		Short: "Update a CI/CD variable in the given scope",
		Args:  cobra.ExactArgs(1),
		Long: `Update a CI/CD variable in the given scope. Fields whose flags are not set keep
the value stored on the server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := f.variable(cmd, args[0])
			if err != nil {
				return err
			}
			existing := c.dispatcher.ListVariables(cmd.Context(), t.instanceID, t.projectID)
			if !existing.OK() {
				return errors.New(existing.Error)
			}
			current, ok := findVariable(existing.Data, v.Identity())
			if !ok {
				return fmt.Errorf("variable %s not found in scope %s", args[0], v.Identity().EnvironmentScope)
			}
			v = f.merge(cmd, current, v)
			resp := c.dispatcher.UpdateVariable(cmd.Context(), t.instanceID, t.projectID, args[0], v)
			return render(c, resp, func(updated domain.CIVariable) error {
				return writeTable(c.out, variableHeader, variableRows([]domain.CIVariable{updated}, false))
			})
		},
	}
	t.addFlags(cmd)
	f.addFlags(cmd)
	return cmd
}

func newVariableDeleteCmd(c *cli) *cobra.Command {
	var t target
	var scope string

	cmd := &cobra.Command{
		Use:     "delete KEY",
		Aliases: []string{"rm"},
		Short:   "Delete a CI/CD variable",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := c.dispatcher.DeleteVariable(cmd.Context(), t.instanceID, t.projectID, args[0], scope)
			return render(c, resp, func(struct{}) error {
				_, err := fmt.Fprintf(c.out, "Deleted variable %s\n", args[0])
				return err
			})
		},
	}
	t.addFlags(cmd)
	cmd.Flags().StringVar(&scope, "scope", domain.ScopeAll, "Environment scope")
	return cmd
}

func newVariableImportCmd(c *cli) *cobra.Command {
	var t target
	var presetName, scope string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import variables from .env style text (- for stdin)",
		Long: `Import KEY=VALUE or KEY: VALUE lines as CI/CD variables. Variables that already
exist in the target scope are updated, the rest are created.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			preset, err := envfile.ParsePreset(presetName)
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			entries, ok := envfile.Parse(string(data))
			if !ok {
				return errors.New("input does not look like environment variables")
			}

			existing := c.dispatcher.ListVariables(cmd.Context(), t.instanceID, t.projectID)
			if !existing.OK() {
				return errors.New(existing.Error)
			}
			plan := importPlan(t, existing.Data, envfile.ToVariables(entries, preset, scope))

			if dryRun {
				_, err := fmt.Fprintf(c.out, "Would create %d and update %d variables\n", len(plan.Creates), len(plan.Updates))
				return err
			}

			result, applyErr := c.dispatcher.ApplyPlan(cmd.Context(), plan)
			if c.output == "json" {
				if err := writeJSON(c.out, result); err != nil {
					return err
				}
			} else {
				if _, err := fmt.Fprintf(c.out, "Created %d, updated %d\n", result.Created, result.Updated); err != nil {
					return err
				}
				for _, msg := range result.Errors {
					if _, err := fmt.Fprintln(c.out, msg); err != nil {
						return err
					}
				}
			}
			return applyErr
		},
	}
	t.addFlags(cmd)
	cmd.Flags().StringVar(&presetName, "preset", string(envfile.PresetUnprotected), "Protection preset (unprotected, protected, protected_masked)")
	cmd.Flags().StringVar(&scope, "scope", domain.ScopeAll, "Environment scope of the imported variables")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without calling the API")
	return cmd
}

// importPlan updates variables that exist in the same scope and creates the rest.
// A key repeated in the input keeps its last value.
func importPlan(t target, existing, imported []domain.CIVariable) service.Plan {
	onServer := make(map[domain.VariableIdentity]domain.CIVariable, len(existing))
	for _, v := range existing {
		onServer[v.Identity()] = v
	}

	var order []domain.VariableIdentity
	latest := make(map[domain.VariableIdentity]domain.CIVariable, len(imported))
	for _, v := range imported {
		id := v.Identity()
		if _, seen := latest[id]; !seen {
			order = append(order, id)
		}
		latest[id] = v
	}

	plan := service.Plan{InstanceID: t.instanceID, ProjectID: t.projectID}
	for _, id := range order {
		v := latest[id]
		server, ok := onServer[id]
		if !ok {
			plan.Creates = append(plan.Creates, v)
			continue
		}
		v.VariableType = server.VariableType
		v.Description = server.Description
		plan.Updates = append(plan.Updates, service.Change{Variable: v, MaskedOnServer: server.Masked})
	}
	return plan
}

// readInput reads a file, or the command's stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
