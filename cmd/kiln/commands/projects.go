package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/kiln/internal/ui/style"
)

func (c *CLI) newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the projects of the workspace and their tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			workingDir, err := projectDir(cmd)
			if err != nil {
				return err
			}
			pairs, _ := cmd.Flags().GetStringArray("property")
			properties, err := domain.ParseProperties(pairs)
			if err != nil {
				return err
			}

			model, err := c.app.Projects(cmd.Context(), workingDir, properties)
			if err != nil {
				return err
			}
			RenderProjects(cmd.OutOrStdout(), model)
			return nil
		},
	}
	cmd.Flags().StringArrayP("property", "P", nil, "Set a project property (key=value)")
	return cmd
}

// RenderProjects writes the project tree of model to w.
func RenderProjects(w io.Writer, model *domain.BuildModel) {
	styles := style.New(output.NewRenderer(w))

	pathWidth, taskWidth := 0, 0
	for _, p := range model.Projects {
		pathWidth = max(pathWidth, len(p.Path))
		for _, t := range p.Tasks {
			taskWidth = max(taskWidth, len(t.Name))
		}
	}

	var b strings.Builder
	rootName := ""
	if model.Settings != nil {
		rootName = model.Settings.RootProject
	}
	b.WriteString(styles.Title.Render(fmt.Sprintf("Root project '%s'", rootName)))
	b.WriteString("\n\n")

	for _, p := range model.Projects {
		b.WriteString(style.Dot + " ")
		if p.BuildFile == "" {
			b.WriteString(styles.Path.Render(p.Path))
		} else {
			b.WriteString(styles.Path.Render(fmt.Sprintf("%-*s", pathWidth, p.Path)))
			b.WriteString("  " + styles.Muted.Render(p.BuildFile))
		}
		b.WriteString("\n")
		if p.Description != "" {
			b.WriteString("    " + p.Description + "\n")
		}
		for _, t := range p.Tasks {
			b.WriteString("    " + style.Arrow + " ")
			if t.Description == "" {
				b.WriteString(t.Name + "\n")
				continue
			}
			b.WriteString(fmt.Sprintf("%-*s  ", taskWidth, t.Name))
			b.WriteString(styles.Muted.Render(t.Description) + "\n")
		}
	}

	_, _ = io.WriteString(w, b.String())
}
