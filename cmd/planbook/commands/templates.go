package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/config"
	"github.com/valksor/go-planbook/internal/display"
	"github.com/valksor/go-planbook/internal/template"
)

var templatesJSON bool

var templatesCmd = &cobra.Command{
	Use:     "templates [name]",
	Aliases: []string{"template"},
	GroupID: "plans",
	Short:   "List plan templates or show one",
	Long: fmt.Sprintf(`List the templates accepted by "planbook create --template".

Custom templates are YAML files in .planbook/%s. A custom template with the
same name as a built-in one replaces it.`, template.DirName),
	Args: cobra.MaximumNArgs(1),
	RunE: runTemplates,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.Flags().BoolVar(&templatesJSON, "json", false, "Output as JSON")
}

func templateLibrary() *template.Library {
	return template.NewLibrary(filepath.Join(config.Dir(workDir), template.DirName))
}

func runTemplates(cmd *cobra.Command, args []string) error {
	lib := templateLibrary()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		tpl, err := lib.Load(args[0])
		if err != nil {
			return err
		}
		if jsonOutput(templatesJSON) {
			return printJSON(out, tpl)
		}
		printf(out, "%s\n", display.Bold(tpl.Name))
		printf(out, "%s", display.KeyValue("Description", tpl.GetDescription()))
		printf(out, "%s", display.KeyValue("Source", tpl.Source))
		if tpl.Status != "" {
			printf(out, "%s", display.KeyValue("Status", tpl.Status))
		}
		for i, step := range tpl.Steps {
			printf(out, "  %d. %s\n", i+1, step)
		}
		if tpl.Body != "" {
			printf(out, "\n%s\n", tpl.Body)
		}
		return nil
	}

	all, err := lib.List()
	if err != nil {
		return err
	}
	if jsonOutput(templatesJSON) {
		return printJSON(out, all)
	}
	for _, tpl := range all {
		printf(out, "  %-10s %s\n", display.Cyan(tpl.Name), display.Muted(tpl.GetDescription()))
	}
	printf(out, "\n%s\n", display.Muted(`Use: planbook create "<title>" --template <name>`))
	return nil
}
