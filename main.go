package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/CrestNiraj12/scrollfeed/app/feed"
	"github.com/CrestNiraj12/scrollfeed/domain"
	"github.com/CrestNiraj12/scrollfeed/infra/config"
	"github.com/CrestNiraj12/scrollfeed/infra/jsonapi"
	"github.com/CrestNiraj12/scrollfeed/infra/logging"
	"github.com/CrestNiraj12/scrollfeed/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func resolveVersionInfo(v, c, d, moduleVersion string, settings map[string]string) (string, string, string) {
	if v == "dev" {
		mv := strings.TrimSpace(moduleVersion)
		if mv != "" && mv != "(devel)" {
			v = mv
		}
	}
	if c == "none" {
		rev := strings.TrimSpace(settings["vcs.revision"])
		if rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			c = rev
		}
	}
	if d == "unknown" {
		t := strings.TrimSpace(settings["vcs.time"])
		if t != "" {
			d = t
		}
	}
	return v, c, d
}

func buildSettingsMap(in []debug.BuildSetting) map[string]string {
	out := make(map[string]string, len(in))
	for _, s := range in {
		out[s.Key] = s.Value
	}
	return out
}

func resolvedRuntimeVersionInfo(v, c, d string) (string, string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v, c, d
	}
	return resolveVersionInfo(v, c, d, info.Main.Version, buildSettingsMap(info.Settings))
}

func versionString() string {
	v, c, d := resolvedRuntimeVersionInfo(version, commit, date)
	return fmt.Sprintf("%s\ncommit: %s\nbuilt: %s", v, c, d)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "scrollfeed",
		Short:         "Infinite-scrolling post feed in the terminal",
		Long:          "scrollfeed pages through a JSON posts API, resolving each author once,\nand renders the posts as cards that load more as you scroll.",
		Version:       versionString(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(cmd)
			if err != nil {
				return err
			}
			defer rt.logger.Close()

			// In-flight page requests are cancelled once the program exits.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			rt.logger.Info("starting feed", "base_url", rt.cfg.BaseURL, "page_size", rt.cfg.PageSize, "start_id", rt.cfg.StartID)
			p := tea.NewProgram(
				tui.NewApp(tui.Deps{Ctx: ctx, Feed: rt.ctrl}),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
				tea.WithContext(ctx),
			)
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		},
	}
	root.SetVersionTemplate("scrollfeed {{.Version}}\n")
	config.RegisterFlags(root.PersistentFlags())
	root.AddCommand(newDumpCmd())
	return root
}

func newDumpCmd() *cobra.Command {
	var (
		pages  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Fetch pages without the TUI and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pages < 1 {
				return fmt.Errorf("--pages must be at least 1")
			}
			rt, err := setup(cmd)
			if err != nil {
				return err
			}
			defer rt.logger.Close()
			return dumpPosts(cmd.Context(), rt.ctrl, pages, cmd.OutOrStdout(), asJSON)
		},
	}
	cmd.Flags().IntVarP(&pages, "pages", "n", 1, "number of pages to fetch")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per post")
	return cmd
}

type runtimeDeps struct {
	cfg    config.Config
	logger *logging.Logger
	ctrl   *feed.Controller
}

// setup builds the infrastructure shared by every command.
func setup(cmd *cobra.Command) (*runtimeDeps, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	client := jsonapi.NewClient(cfg.BaseURL, cfg.Timeout)
	ctrl := feed.New(
		jsonapi.NewPostService(client),
		jsonapi.NewAuthorService(client),
		feed.WithPageSize(cfg.PageSize),
		feed.WithStartID(cfg.StartID),
		feed.WithLogger(logger.Logger),
	)
	return &runtimeDeps{cfg: cfg, logger: logger, ctrl: ctrl}, nil
}

type dumpedPost struct {
	ID       int    `json:"id"`
	AuthorID int    `json:"author_id"`
	Author   string `json:"author,omitempty"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// dumpPosts fetches up to pages pages and writes every new post to w. The
// end of the feed is not an error; any other halt is.
func dumpPosts(ctx context.Context, ctrl *feed.Controller, pages int, w io.Writer, asJSON bool) error {
	enc := json.NewEncoder(w)
	printed := 0
	var haltErr error
	for range pages {
		_, err := ctrl.FetchNextPage(ctx)
		posts := ctrl.Snapshot().Posts
		for _, p := range posts[printed:] {
			if err := writePost(w, enc, p, asJSON); err != nil {
				return err
			}
		}
		printed = len(posts)
		if err != nil {
			haltErr = err
			break
		}
	}
	if haltErr != nil && !errors.Is(haltErr, domain.ErrFeedExhausted) {
		return fmt.Errorf("feed halted: %w", haltErr)
	}
	if printed == 0 && !asJSON {
		_, err := fmt.Fprintln(w, "No more posts")
		return err
	}
	return nil
}

func writePost(w io.Writer, enc *json.Encoder, p domain.Post, asJSON bool) error {
	if asJSON {
		return enc.Encode(dumpedPost{
			ID:       p.ID,
			AuthorID: p.AuthorID,
			Author:   p.AuthorUsername,
			Title:    p.Title,
			Content:  p.Content,
		})
	}
	author := "unknown"
	if p.HasAuthor() {
		author = "@" + p.AuthorUsername
	}
	_, err := fmt.Fprintf(w, "#%d %s\n%s\n%s\n\n", p.ID, author, p.Title, p.Content)
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "scrollfeed: %v\n", err)
		os.Exit(1)
	}
}
