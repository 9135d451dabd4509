package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/planr/internal/app"
	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/usecase"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize planr in the current project",
		Long: `Initialize planr in the current project.

This command creates the .planr/ directory with:
- tasks.json: empty task store (or the git refs namespace when
  [tasks] store = "git")
- logs/: directory for log files

Running init again on an initialized project is harmless.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.InitRepoUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.InitRepoInput{
				DataDir:     c.Config.DataDir,
				ProjectRoot: c.Config.ProjectRoot,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.AlreadyInitialized {
				_, _ = fmt.Fprintf(w, "planr already initialized in %s\n", out.DataDir)
				return nil
			}
			_, _ = fmt.Fprintf(w, "Initialized planr in %s\n", out.DataDir)
			if out.GitignoreNeedsAdd {
				_, _ = fmt.Fprintf(w, "Hint: add %s/ to .gitignore\n", domain.DataDirName)
			}
			return nil
		},
	}
}
