package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/streamcap/streamcap/browser"
	"github.com/streamcap/streamcap/color"
	"github.com/streamcap/streamcap/icon"
	"github.com/streamcap/streamcap/key"
	"github.com/streamcap/streamcap/open"
	"github.com/streamcap/streamcap/pipeline"
	"github.com/streamcap/streamcap/stream"
	"github.com/streamcap/streamcap/style"
	"github.com/streamcap/streamcap/util"
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("output", "o", "", "Path of the written playlist")
	lo.Must0(viper.BindPFlag(key.PlaylistPath, runCmd.Flags().Lookup("output")))

	runCmd.Flags().Bool("sort", false, "Sort entries by start time")
	lo.Must0(viper.BindPFlag(key.PlaylistSort, runCmd.Flags().Lookup("sort")))

	runCmd.Flags().Bool("all-urls", false, "Keep every captured URL instead of the first")
	lo.Must0(viper.BindPFlag(key.CaptureAllURLs, runCmd.Flags().Lookup("all-urls")))

	runCmd.Flags().StringP("filter", "f", "", "Only capture streams whose name or category fuzzy-matches")
	runCmd.Flags().BoolP("json", "j", false, "Print the run summary as JSON")
	runCmd.Flags().Bool("no-validate", false, "Skip checking captured URLs")
	runCmd.Flags().Bool("headful", false, "Show the browser window")
	runCmd.Flags().BoolP("play", "p", false, "Open the written playlist in a player")

	runCmd.SetOut(os.Stdout)
}

var runCmd = &cobra.Command{
	Use:     "run",
	Short:   "Capture stream URLs from the catalog and write a playlist",
	Example: "  streamcap run -o ~/iptv/ppv.m3u8 --filter nba",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		asJson := lo.Must(cmd.Flags().GetBool("json"))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := pipeline.BrowserOptions()
		if lo.Must(cmd.Flags().GetBool("headful")) {
			opts.Headless = false
		}

		engine := browser.NewEngine(opts)
		defer func() { _ = engine.Close() }()

		p := pipeline.FromConfig(engine)
		p.Filter = lo.Must(cmd.Flags().GetString("filter"))
		if lo.Must(cmd.Flags().GetBool("no-validate")) {
			p.Validator = nil
		}

		finish := func() {}
		if !asJson {
			finish = attachProgress(p)
		}

		summary, err := p.Run(ctx)
		finish()
		if err != nil {
			// deferred Close does not run through os.Exit
			_ = engine.Close()
		}
		handleErr(err)

		if asJson {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(summary))
			return
		}

		printSummary(cmd, summary)

		if lo.Must(cmd.Flags().GetBool("play")) && summary.Written > 0 {
			handleErr(open.Start(summary.Output, viper.GetString(key.PlaylistPlayer)))
		}
	},
}

// attachProgress reports stages and per-candidate capture outcomes on the terminal.
// The returned func erases the last progress line.
func attachProgress(p *pipeline.Pipeline) (finish func()) {
	var (
		mu    sync.Mutex
		erase = func() {}
		done  int
		total int
	)

	p.OnStage = func(stage pipeline.Stage, n int) {
		mu.Lock()
		defer mu.Unlock()

		erase()
		switch stage {
		case pipeline.StageCatalog:
			erase = util.PrintErasable(fmt.Sprintf("%s Fetching catalog", icon.Get(icon.Progress)))
		case pipeline.StageCapture:
			total, done = n, 0
			erase = util.PrintErasable(fmt.Sprintf("%s Capturing %s", icon.Get(icon.Browser), util.Quantify(n, "stream", "streams")))
		case pipeline.StageValidate:
			erase = util.PrintErasable(fmt.Sprintf("%s Validating %s", icon.Get(icon.Progress), util.Quantify(n, "capture", "captures")))
		case pipeline.StageWrite:
			erase = util.PrintErasable(fmt.Sprintf("%s Writing %s", icon.Get(icon.Playlist), util.Quantify(n, "entry", "entries")))
		}
	}

	p.Scheduler.OnResult = func(res stream.CaptureResult) {
		mu.Lock()
		defer mu.Unlock()

		erase()
		if res.Phase == stream.PhaseInitial {
			done++
		}

		mark := style.Fg(color.Green)(icon.Get(icon.Success))
		switch {
		case !res.Succeeded() && res.Phase == stream.PhaseRetry:
			mark = style.Fg(color.Red)(icon.Get(icon.Fail))
		case !res.Succeeded():
			mark = style.Fg(color.Yellow)(icon.Get(icon.Retry))
		}

		if util.IsTerminal() {
			fmt.Printf("%s %s %s\n", mark, util.Truncate(res.Candidate.Name, 60), style.Faint(string(res.Phase)))
		}

		erase = util.PrintErasable(fmt.Sprintf("%s Capturing %d/%d", icon.Get(icon.Browser), done, total))
	}

	return func() {
		mu.Lock()
		defer mu.Unlock()
		erase()
		erase = func() {}
	}
}

func printSummary(cmd *cobra.Command, s pipeline.Summary) {
	label := style.New().Bold(true).Foreground(color.Purple).Render
	value := style.Fg(color.Yellow)

	if s.Candidates == 0 {
		cmd.Printf("%s %s\n", style.Fg(color.Yellow)(icon.Get(icon.Warn)), "No streams in the catalog, nothing written")
		return
	}

	rows := []lo.Tuple2[string, int]{
		lo.T2("Candidates", s.Candidates),
		lo.T2("Captured", s.CapturedInitial+s.CapturedRetry),
		lo.T2("  on retry", s.CapturedRetry),
		lo.T2("Validated", s.Validated),
		lo.T2("Unvalidated", s.Unvalidated),
		lo.T2("Synthesized", s.Synthesized),
		lo.T2("Dropped", s.Dropped),
	}

	for _, row := range rows {
		cmd.Printf("%-12s %s\n", label(row.A), value(fmt.Sprint(row.B)))
	}

	if s.Synthesized > 0 {
		cmd.Println()
		cmd.Printf(
			"%s %s guessed, tagged tvg-status=\"synthesized\"\n",
			style.Fg(color.Yellow)(icon.Get(icon.Guess)),
			util.Quantify(s.Synthesized, "URL was", "URLs were"),
		)
	}

	cmd.Println()
	cmd.Printf(
		"%s wrote %s to %s in %s\n",
		style.Fg(color.Green)(icon.Get(icon.Success)),
		util.Quantify(s.Written, "entry", "entries"),
		style.Fg(color.Cyan)(s.Output),
		s.Elapsed.Round(time.Millisecond),
	)
}
