package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openrl/rlmaps-downloader/internal/config"
	internalhttp "github.com/openrl/rlmaps-downloader/internal/http"
	"github.com/openrl/rlmaps-downloader/internal/install"
	"github.com/openrl/rlmaps-downloader/internal/library"
	"github.com/openrl/rlmaps-downloader/internal/model"
	"github.com/openrl/rlmaps-downloader/internal/preview"
	"github.com/openrl/rlmaps-downloader/internal/rlmaps"
	"github.com/openrl/rlmaps-downloader/internal/workshop"
)

func main() {
	// Command line flags
	var (
		searchFlag   = flag.String("search", "", "Search the map catalog for a keyword")
		pageFlag     = flag.Int("page", 1, "Result page for -search")
		downloadFlag = flag.String("download", "", "Download and install the map with this catalog id")
		releaseFlag  = flag.String("release", "", "Release tag or name for -download (default: latest with a file)")
		listFlag     = flag.Bool("list", false, "List installed maps")
		destFlag     = flag.String("dest", "", "Maps folder (overrides config)")
		configFlag   = flag.String("config", "", "Path to config file")
		timeoutFlag  = flag.Int("timeout", 0, "Request timeout in seconds (overrides config)")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Parse()

	if *searchFlag == "" && *downloadFlag == "" && !*listFlag {
		fmt.Println("RL Maps Downloader - Search and install community maps")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  rlmaps-dl -search <keyword> [-page <n>]")
		fmt.Println("  rlmaps-dl -download <id> [-release <tag>]")
		fmt.Println("  rlmaps-dl -list")
		fmt.Println()
		fmt.Println("For interactive mode, use: rlmaps-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	configPath := *configFlag
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	settings, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Apply flags
	if *destFlag != "" {
		settings.MapsFolderPath = *destFlag
	}
	if *timeoutFlag > 0 {
		settings.RequestTimeoutSeconds = *timeoutFlag
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	onProgress := func(event model.ProgressEvent) {
		if event.Level == model.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case model.LevelError:
			prefix = "❌ "
		case model.LevelWarning:
			prefix = "⚠️  "
		case model.LevelSuccess:
			prefix = "✅ "
		case model.LevelInfo:
			prefix = "ℹ️  "
		default:
			prefix = "   "
		}

		fmt.Println(prefix + event.Message)
	}

	httpClient := internalhttp.NewClient(settings.RequestTimeout(), settings.CatalogRequestsPerSecond)

	switch {
	case *listFlag:
		err = runList(ctx, settings)
	case *searchFlag != "":
		err = runSearch(ctx, settings, httpClient, *searchFlag, *pageFlag, onProgress)
	default:
		err = runDownload(ctx, settings, httpClient, *downloadFlag, *releaseFlag, onProgress)
	}

	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nCancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runSearch performs one catalog search, waits for enrichment to
// finish and prints the results as a table.
func runSearch(ctx context.Context, settings *config.Settings, httpClient *internalhttp.Client, keyword string, page int, onProgress model.ProgressFunc) error {
	catalog := rlmaps.NewClient(httpClient, settings.CatalogBaseURL)
	store := model.NewStore()
	previews := preview.NewCache(httpClient, store, settings.PreviewCachePath, onProgress)
	browser := workshop.NewBrowser(catalog, previews, store, onProgress)

	fmt.Printf("🔎 Searching for %q (page %d)...\n\n", keyword, page)

	if err := browser.StartSearch(keyword, page); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		browser.StopSearch()
	}()

	browser.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if message := browser.LastError(); message != "" {
		return fmt.Errorf("search failed: %s", message)
	}

	results := store.Snapshot()
	fmt.Printf("\nShowing %d of %d maps\n\n", len(results), store.TotalFound())
	if len(results) == 0 {
		return nil
	}

	fmt.Printf("%-8s %-32s %-20s %-9s %s\n", "ID", "NAME", "AUTHOR", "RELEASES", "LATEST")
	for _, result := range results {
		latest := ""
		if len(result.Releases) > 0 {
			latest = result.Releases[0].Name
			if latest == "" {
				latest = result.Releases[0].Tag
			}
		}
		fmt.Printf("%-8s %-32s %-20s %-9d %s\n",
			result.ID,
			truncate(result.Name, 32),
			truncate(result.Author, 20),
			len(result.Releases),
			latest,
		)
	}

	fmt.Println()
	fmt.Printf("Install with: rlmaps-dl -download <id>\n")
	return nil
}

// runDownload resolves a map by id and runs the install pipeline.
func runDownload(ctx context.Context, settings *config.Settings, httpClient *internalhttp.Client, id, releaseTag string, onProgress model.ProgressFunc) error {
	catalog := rlmaps.NewClient(httpClient, settings.CatalogBaseURL)

	mapResult, err := catalog.Project(ctx, id)
	if err != nil {
		return fmt.Errorf("fetching map %s: %w", id, err)
	}

	releases, err := catalog.Releases(ctx, id)
	if err != nil {
		return fmt.Errorf("fetching releases for %s: %w", id, err)
	}
	mapResult.Releases = releases

	release, ok := pickRelease(releases, releaseTag)
	if !ok {
		if releaseTag != "" {
			return fmt.Errorf("map %s has no downloadable release %q", mapResult.Name, releaseTag)
		}
		return fmt.Errorf("map %s has no downloadable release", mapResult.Name)
	}

	installer := install.NewInstaller(httpClient, install.CommandExtractor{}, install.SystemClock(), settings.PollAttempts(), onProgress)

	job, err := installer.Download(ctx, settings.MapsFolderPath, *mapResult, release)
	if err != nil {
		return err
	}

	received, _ := job.Progress()
	fmt.Println()
	fmt.Printf("✨ Installed %s to %s (%.2f MB)\n", mapResult.Name, job.Folder, float64(received)/1024/1024)
	return nil
}

// pickRelease selects the release to install: the one matching the
// given tag or name, or the newest release carrying a file.
func pickRelease(releases []model.Release, tag string) (model.Release, bool) {
	for _, release := range releases {
		if release.DownloadURL == "" {
			continue
		}
		if tag == "" || release.Tag == tag || release.Name == tag {
			return release, true
		}
	}
	return model.Release{}, false
}

// runList prints the installed maps found in the maps folder.
func runList(ctx context.Context, settings *config.Settings) error {
	entries, err := library.NewScanner().Scan(ctx, settings.MapsFolderPath)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Printf("No maps installed in %s\n", settings.MapsFolderPath)
		return nil
	}

	fmt.Printf("%d installed maps in %s\n\n", len(entries), settings.MapsFolderPath)
	fmt.Printf("%-32s %-20s %-12s %s\n", "TITLE", "AUTHOR", "INSTALLED", "PAYLOAD")
	for _, entry := range entries {
		fmt.Printf("%-32s %-20s %-12s %s\n",
			truncate(entry.Title, 32),
			truncate(entry.Author, 20),
			entry.ModTime.Format("2006-01-02"),
			entry.Path,
		)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
