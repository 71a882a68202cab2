package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	flag "github.com/spf13/pflag"

	"github.com/landmarkfp/acousticdna/internal/config"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/audio"
	"github.com/landmarkfp/acousticdna/pkg/logger"
)

func main() {
	log := logger.GetLogger()
	printBanner()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	log.Infof("executing command: %s", command)

	switch command {
	case "add":
		handleAdd(os.Args[2:])
	case "index":
		handleIndex(os.Args[2:])
	case "youtube":
		handleYouTube(os.Args[2:])
	case "match":
		handleMatch(os.Args[2:])
	case "list":
		handleList(os.Args[2:])
	case "delete":
		handleDelete(os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
   _                      _   _      ____  _   _    _
  / \   ___ ___  _   _ ___| |_(_) ___|  _ \| \ | |  / \
 / _ \ / __/ _ \| | | / __| __| |/ __| | | |  \| | / _ \
/ ___ \ (_| (_) | |_| \__ \ |_| | (__| |_| | |\  |/ ___ \
\_/   \_/___\___/ \__,_|___/\__|_|\___|____/|_| \_/_/   \_/

           Audio Fingerprinting CLI Tool
`
	fmt.Println(banner)
}

func printUsage() {
	fmt.Println("AcousticDNA - Audio Fingerprinting CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  acousticDNA add <audio_file> --title <title> --artist <artist>")
	fmt.Println("  acousticDNA index <dir_or_files...> [--concurrency N]")
	fmt.Println("  acousticDNA youtube <url> [--title <title>] [--artist <artist>]")
	fmt.Println("  acousticDNA match <audio_file>")
	fmt.Println("  acousticDNA list")
	fmt.Println("  acousticDNA delete <track_id>")
	fmt.Println("\nAll subcommands accept --db <path> and --config <path.yaml>")
}

func newServiceFromFlags(fs *flag.FlagSet) (acousticdna.Service, error) {
	dbPath, _ := fs.GetString("db")
	cfgPath, _ := fs.GetString("config")

	opts := []acousticdna.Option{acousticdna.WithDBPath(dbPath)}
	if cfgPath != "" {
		cfgFile, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, acousticdna.WithParams(cfgFile.Params()))
		if cfgFile.DBPath != "" {
			opts[0] = acousticdna.WithDBPath(cfgFile.DBPath)
		}
	}
	return acousticdna.NewService(opts...)
}

func handleAdd(args []string) {
	log := logger.GetLogger()
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "Track title (required)")
	artist := fs.String("artist", "", "Artist name (required)")
	fs.String("db", "acousticdna.sqlite3", "Path to SQLite database")
	fs.String("config", "", "Path to a YAML config file")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Println("Error: audio file path required")
		fmt.Println("Usage: acousticDNA add <audio_file> --title <title> --artist <artist>")
		os.Exit(1)
	}
	audioPath := fs.Arg(0)

	if *title == "" || *artist == "" {
		fmt.Println("Error: --title and --artist are required")
		os.Exit(1)
	}

	fmt.Println("\nInitializing service...")
	svc, err := newServiceFromFlags(fs)
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	fmt.Println("Processing audio file...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	id, err := svc.AddTrack(ctx, audioPath, *title, *artist)
	if err != nil {
		fmt.Printf("\nFailed to add track: %v\n", err)
		log.Errorf("AddTrack failed: %v", err)
		os.Exit(1)
	}

	fmt.Println("\nSuccessfully added track to index!")
	fmt.Printf("   ID:     %s\n", id)
	fmt.Printf("   Title:  %s\n", *title)
	fmt.Printf("   Artist: %s\n", *artist)
}

func handleIndex(args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	concurrency := fs.Int("concurrency", 4, "Number of files to fingerprint in parallel")
	fs.String("db", "acousticdna.sqlite3", "Path to SQLite database")
	fs.String("config", "", "Path to a YAML config file")
	fs.Parse(args)

	paths := collectWAVPaths(fs.Args())
	if len(paths) == 0 {
		fmt.Println("Error: no .wav files found among the given paths")
		os.Exit(1)
	}

	svc, err := newServiceFromFlags(fs)
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	bar := progressbar.Default(int64(len(paths)), "indexing")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	result, err := svc.AddTracks(ctx, paths, *concurrency, func(done, total int) {
		bar.Set(done)
	})
	bar.Finish()
	if err != nil && len(result.Succeeded) == 0 {
		fmt.Printf("Indexing aborted: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nIndexed %d/%d files", len(result.Succeeded), len(paths))
	if len(result.Failed) > 0 {
		fmt.Printf(" (%d failed)\n", len(result.Failed))
		for _, f := range result.Failed {
			fmt.Printf("   %s: %v\n", f.Path, f.Err)
		}
	} else {
		fmt.Println()
	}
}

func collectWAVPaths(roots []string) []string {
	var paths []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			if strings.EqualFold(filepath.Ext(root), ".wav") {
				paths = append(paths, root)
			}
			continue
		}
		filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".wav") {
				paths = append(paths, path)
			}
			return nil
		})
	}
	return paths
}

func handleYouTube(args []string) {
	fs := flag.NewFlagSet("youtube", flag.ExitOnError)
	title := fs.String("title", "", "Track title (optional, taken from YouTube metadata if empty)")
	artist := fs.String("artist", "", "Artist name (optional, taken from YouTube metadata if empty)")
	tempDir := fs.String("temp", os.TempDir(), "Scratch directory for the download/transcode")
	fs.String("db", "acousticdna.sqlite3", "Path to SQLite database")
	fs.String("config", "", "Path to a YAML config file")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Println("Usage: acousticDNA youtube <url> [--title <title>] [--artist <artist>]")
		os.Exit(1)
	}
	url := fs.Arg(0)
	if !audio.IsYouTubeURL(url) {
		fmt.Println("Error: not a recognized YouTube URL")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Println("Downloading from YouTube...")
	downloadedPath, meta, err := audio.DownloadYouTubeAudio(ctx, url, *tempDir)
	if err != nil {
		fmt.Printf("Failed to download: %v\n", err)
		os.Exit(1)
	}
	defer os.Remove(downloadedPath)

	wavPath, err := audio.Transcode(ctx, downloadedPath, *tempDir, audio.TranscodeConfig{})
	if err != nil {
		fmt.Printf("Failed to transcode: %v\n", err)
		os.Exit(1)
	}
	defer os.Remove(wavPath)

	finalTitle, finalArtist := *title, *artist
	if finalTitle == "" {
		finalTitle = meta.Title
	}
	if finalArtist == "" {
		finalArtist = meta.Artist
	}

	svc, err := newServiceFromFlags(fs)
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	id, err := svc.AddTrack(ctx, wavPath, finalTitle, finalArtist)
	if err != nil {
		fmt.Printf("Failed to add track: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nSuccessfully added track from YouTube!")
	fmt.Printf("   ID:     %s\n", id)
	fmt.Printf("   Title:  %s\n", finalTitle)
	fmt.Printf("   Artist: %s\n", finalArtist)
}

func handleMatch(args []string) {
	log := logger.GetLogger()
	fs := flag.NewFlagSet("match", flag.ExitOnError)
	topK := fs.Int("top", 5, "Number of candidates to show")
	fs.String("db", "acousticdna.sqlite3", "Path to SQLite database")
	fs.String("config", "", "Path to a YAML config file")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Println("Usage: acousticDNA match <audio_file>")
		os.Exit(1)
	}
	audioPath := fs.Arg(0)

	svc, err := newServiceFromFlags(fs)
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	fmt.Println("Analyzing audio file...")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	results, err := svc.MatchQuery(ctx, audioPath, *topK)
	if err != nil {
		fmt.Printf("\nFailed to match: %v\n", err)
		log.Errorf("MatchQuery failed: %v", err)
		os.Exit(1)
	}

	if len(results) == 0 {
		fmt.Println("\nNo matches found in index")
		return
	}

	fmt.Printf("\nFound %d match(es)!\n\n", len(results))
	for i, r := range results {
		fmt.Printf("%d. %q by %s\n", i+1, r.Track.Title, r.Track.Artist)
		fmt.Printf("   Score: %.1f%% | Offset: %d\n\n", r.Score*100, r.Offset)
	}
}

func handleList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	fs.String("db", "acousticdna.sqlite3", "Path to SQLite database")
	fs.String("config", "", "Path to a YAML config file")
	fs.Parse(args)

	svc, err := newServiceFromFlags(fs)
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	tracks, err := svc.ListTracks()
	if err != nil {
		fmt.Printf("Failed to list tracks: %v\n", err)
		os.Exit(1)
	}

	if len(tracks) == 0 {
		fmt.Println("\nNo tracks in index")
		return
	}

	fmt.Printf("\nFound %d track(s):\n\n", len(tracks))
	for i, t := range tracks {
		fmt.Printf("%d. %q by %s (ID: %s)\n", i+1, t.Title, t.Artist, t.ID)
		fmt.Printf("   Duration: %.1fs | Peaks: %d | Hashes: %d\n\n", t.DurationS, t.NumPeaks, t.NumHashes)
	}
}

func handleDelete(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	fs.String("db", "acousticdna.sqlite3", "Path to SQLite database")
	fs.String("config", "", "Path to a YAML config file")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Println("Usage: acousticDNA delete <track_id>")
		os.Exit(1)
	}
	trackID := fs.Arg(0)

	svc, err := newServiceFromFlags(fs)
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	track, err := svc.GetTrack(trackID)
	if err != nil {
		fmt.Printf("Track not found (ID: %s)\n", trackID)
		os.Exit(1)
	}

	if err := svc.DeleteTrack(trackID); err != nil {
		fmt.Printf("Failed to delete track: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nSuccessfully deleted track:")
	fmt.Printf("   ID:     %s\n", track.ID)
	fmt.Printf("   Title:  %s\n", track.Title)
	fmt.Printf("   Artist: %s\n", track.Artist)
}
