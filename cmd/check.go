package cmd

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/streamcap/streamcap/browser"
	"github.com/streamcap/streamcap/constant"
	"github.com/streamcap/streamcap/icon"
	"github.com/streamcap/streamcap/key"
	"github.com/streamcap/streamcap/style"
	"github.com/streamcap/streamcap/where"
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolP("download", "d", false, "Download a browser when none is installed")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that a Chromium browser is available for capturing",
	Run: func(cmd *cobra.Command, args []string) {
		bin := viper.GetString(key.CaptureBrowserBin)
		if bin == "" && !lo.Must(cmd.Flags().GetBool("download")) {
			found, ok := launcher.LookPath()
			if !ok {
				printMissingBrowser()
				return
			}
			bin = found
		}

		resolved, err := browser.ResolveBin(bin)
		if err != nil {
			printMissingBrowser()
			handleErr(err)
		}

		fmt.Printf("%s %s\n", style.Fg(style.SuccessColor)(icon.Get(icon.Success)), resolved)
	},
}

func printMissingBrowser() {
	var install string
	switch runtime.GOOS {
	case constant.Darwin:
		install = "brew install --cask chromium"
	case constant.Linux:
		install = "sudo apt install chromium"
	case constant.Windows:
		install = "scoop install chromium"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.ErrorColor).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.ErrorColor).Render(fmt.Sprintf("%s No Chromium found", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(
		fmt.Sprintf("Set %s, install Chromium, or run with --download\nto fetch one into %s", key.CaptureBrowserBin, where.Browser()),
	)

	suggestion := ""
	if install != "" {
		suggestion = fmt.Sprintf("\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(install))
	}

	fmt.Println(box.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, suggestion)))
}
