package cmd

import (
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/streamcap/streamcap/color"
	"github.com/streamcap/streamcap/config"
	"github.com/streamcap/streamcap/style"
	"github.com/streamcap/streamcap/where"
	"golang.org/x/exp/slices"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Only show variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Only show variables that are unset")

	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

// envVar pairs an environment variable with the default it overrides.
type envVar struct {
	name string
	def  string
}

func exposedEnv() []envVar {
	vars := lo.Map(config.EnvExposed, func(key string, _ int) envVar {
		field := config.Default[key]
		return envVar{name: field.Env(), def: fmt.Sprint(field.Value)}
	})
	vars = append(vars, envVar{name: where.EnvConfigPath, def: where.Config()})

	slices.SortFunc(vars, func(a, b envVar) int {
		switch {
		case a.name < b.name:
			return -1
		case a.name > b.name:
			return 1
		}
		return 0
	})
	return vars
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the supported environment variables",
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))

		for _, env := range exposedEnv() {
			value, present := os.LookupEnv(env.name)

			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			cmd.Print(style.New().Bold(true).Foreground(color.Purple).Render(env.name))
			cmd.Print("=")

			if present {
				cmd.Println(style.Fg(color.Green)(value))
			} else {
				cmd.Println(style.Fg(color.Red)("unset"), style.Faint("(default "+env.def+")"))
			}
		}
	},
}
