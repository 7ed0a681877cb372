package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-scribe/internal/server"
	"github.com/RyanBlaney/sonido-scribe/logging"
	"github.com/RyanBlaney/sonido-scribe/transcode"
	"github.com/RyanBlaney/sonido-scribe/transcription"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sonido-scribe",
	Short: "Transcribe monophonic audio to note names",
	Long: `sonido-scribe detects the notes played in a monophonic WAV recording
and prints them in scientific pitch notation.

Pipeline: WAV decode → onset detection → pitch detection → note naming`,
	Version: version,
}

var notesCmd = &cobra.Command{
	Use:   "notes <file.wav>",
	Short: "Transcribe a WAV file to note names",
	Long: `Transcribe a monophonic WAV recording and print the detected notes
in playing order, joined with ", ".

Examples:
  sonido-scribe notes melody.wav
  sonido-scribe notes melody.wav --onset-threshold 0.2 --workers 4
  sonido-scribe notes melody.wav --config transcriber.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runNotes,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP transcription server",
	Long: `Start an HTTP server exposing the transcription pipeline.

Endpoints:
  GET  /health              liveness check
  POST /api/transcriptions  multipart WAV upload in the "audio" field

Example:
  sonido-scribe serve --port 8080`,
	RunE: runServe,
}

var (
	// notes flags
	configPath      string
	onsetFrameWidth int
	onsetThreshold  float64
	maxFrameWidth   int
	silenceRatio    float64
	pitchThreshold  float64
	gridFrameWidth  int
	gridStepSize    int
	workers         int
	fixedGrid       bool
	verbose         bool

	// serve flags
	port int
)

func init() {
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(serveCmd)

	notesCmd.Flags().StringVar(&configPath, "config", "", "YAML file overriding the transcriber configuration")
	notesCmd.Flags().IntVar(&onsetFrameWidth, "onset-frame-width", 1600, "Envelope frame width in samples for onset detection")
	notesCmd.Flags().Float64Var(&onsetThreshold, "onset-threshold", 0.125, "Envelope rise that declares a new onset")
	notesCmd.Flags().IntVar(&maxFrameWidth, "max-frame-width", 8192, "Maximum samples of a note frame used for pitch estimation")
	notesCmd.Flags().Float64Var(&silenceRatio, "silence-ratio", 0.2, "Fraction of the buffer RMS below which a note frame is dropped")
	notesCmd.Flags().Float64Var(&pitchThreshold, "pitch-threshold", 0.7, "Fraction of the tallest NSDF peak a pitch candidate must exceed")
	notesCmd.Flags().IntVar(&gridFrameWidth, "grid-frame-width", 4096, "Frame width in samples for --fixed-grid")
	notesCmd.Flags().IntVar(&gridStepSize, "grid-step-size", 1024, "Step size in samples for --fixed-grid")
	notesCmd.Flags().IntVar(&workers, "workers", 1, "Goroutines used for per-frame pitch estimation")
	notesCmd.Flags().BoolVar(&fixedGrid, "fixed-grid", false, "Use fixed-width overlapping frames instead of onset detection")
	notesCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	serveCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&configPath, "config", "", "YAML file overriding the transcriber configuration")
	serveCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func runNotes(cmd *cobra.Command, args []string) error {
	if verbose {
		logging.SetLevel(logging.DebugLevel)
	}

	config, err := loadTranscriberConfig(cmd)
	if err != nil {
		return err
	}

	audioData, err := transcode.ReadWAVFile(args[0])
	if err != nil {
		return err
	}

	transcriber := transcription.NewTranscriber(config)

	var notes []transcription.Note
	if fixedGrid {
		notes, err = transcriber.TranscribeFixedGrid(audioData.PCM, audioData.SampleRate)
	} else {
		notes, err = transcriber.Transcribe(audioData.PCM, audioData.SampleRate)
	}
	if err != nil {
		return err
	}

	names := make([]string, len(notes))
	for i, note := range notes {
		names[i] = note.Name.String()
	}
	fmt.Println(strings.Join(names, ", "))

	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if verbose {
		logging.SetLevel(logging.DebugLevel)
	}

	config, err := loadTranscriberConfig(cmd)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Port:        port,
		Transcriber: config,
	})

	fmt.Printf("sonido-scribe listening on http://localhost:%d\n", port)
	return srv.Run()
}

// loadTranscriberConfig layers the transcriber configuration: defaults
// first, then the YAML config file, then any flags set explicitly on the
// command line.
func loadTranscriberConfig(cmd *cobra.Command) (*transcription.TranscriberConfig, error) {
	config := transcription.DefaultTranscriberConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("onset-frame-width") {
		config.OnsetFrameWidth = onsetFrameWidth
	}
	if flags.Changed("onset-threshold") {
		config.OnsetThreshold = onsetThreshold
	}
	if flags.Changed("max-frame-width") {
		config.MaxFrameWidth = maxFrameWidth
	}
	if flags.Changed("silence-ratio") {
		config.SilenceRatio = silenceRatio
	}
	if flags.Changed("pitch-threshold") {
		config.PitchThreshold = pitchThreshold
	}
	if flags.Changed("grid-frame-width") {
		config.GridFrameWidth = gridFrameWidth
	}
	if flags.Changed("grid-step-size") {
		config.GridStepSize = gridStepSize
	}
	if flags.Changed("workers") {
		config.Workers = workers
	}

	return config, nil
}
