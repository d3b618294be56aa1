package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ZacxDev/speech-clips/internal/config"
	"github.com/ZacxDev/speech-clips/internal/ffmpeg"
	"github.com/ZacxDev/speech-clips/internal/processor"
	"github.com/ZacxDev/speech-clips/internal/profile"
	"github.com/ZacxDev/speech-clips/internal/server"
	"github.com/ZacxDev/speech-clips/internal/silence"
	"github.com/ZacxDev/speech-clips/internal/transcribe"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "speech-clips",
		Short: "Turn the speech in a video into captioned GIFs",
		Long: `speech-clips cuts the silent parts out of a video, transcribes every remaining
segment and writes one GIF per segment with the transcript burned in.

Examples:
  # Process one video
  speech-clips process -i talk.mp4 -o ./processed_gifs

  # Show where the silences are without encoding anything
  speech-clips detect -i talk.mp4

  # Run the upload service
  speech-clips serve --addr :5000`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(newProcessCmd())
	rootCmd.AddCommand(newDetectCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newProfilesCmd())

	return rootCmd
}

func newProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Write one captioned GIF per non-silent segment of a video",
		Long: fmt.Sprintf(`Remove silence from a video, transcribe each remaining segment and export
segment_<i>.gif files with the transcript burned in.

Supported profiles:
%s
Example:
  speech-clips process -i talk.mp4 -o ./processed_gifs --profile compact`,
			formatSupportedProfiles()),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			log := config.InitLogger(verbose, false)

			opts, err := pipelineOptions(cmd)
			if err != nil {
				return err
			}

			pipeline, err := buildPipeline(cmd, opts, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			paths, err := pipeline.Process(ctx, opts.InputPath, opts.OutputDir)
			if err != nil {
				return err
			}

			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().StringP("input", "i", "", "Input video file")
	cmd.Flags().StringP("output", "o", config.Env("PROCESSED_DIR", config.DefaultProcessedDir), "Output directory for GIFs")
	addPipelineFlags(cmd)
	addTranscriberFlags(cmd)

	cmd.MarkFlagRequired("input")

	return cmd
}

func newDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Print the silent and non-silent intervals of a video",
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			log := config.InitLogger(verbose, false)

			opts, err := pipelineOptions(cmd)
			if err != nil {
				return err
			}
			// nothing is written, the output dir only has to pass validation
			opts.OutputDir = os.TempDir()

			media := ffmpeg.NewProcessor(log)
			pipeline, err := processor.NewPipeline(opts, media, newDetector(media, opts, log), nil, log)
			if err != nil {
				return err
			}

			analysis, err := pipeline.Analyze(cmd.Context(), opts.InputPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "duration: %.3fs\n", analysis.Duration)
			fmt.Fprintf(out, "silence (%d):\n", len(analysis.Silence))
			for _, s := range analysis.Silence {
				fmt.Fprintf(out, "  %s\n", s)
			}
			fmt.Fprintf(out, "segments (%d):\n", len(analysis.Keep))
			for i, k := range analysis.Keep {
				fmt.Fprintf(out, "  %d: %s\n", i, k)
			}
			return nil
		},
	}

	cmd.Flags().StringP("input", "i", "", "Input video file")
	addPipelineFlags(cmd)

	cmd.MarkFlagRequired("input")

	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload service",
		Long: `Serve an upload form. Every uploaded video is processed synchronously and the
resulting GIFs are listed under /processed_files.

Example:
  speech-clips serve --addr :5000 --upload-dir uploaded_videos --processed-dir processed_gifs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			jsonLogs, _ := cmd.Flags().GetBool("json-logs")
			log := config.InitLogger(verbose, jsonLogs)

			srvOpts := config.ServerOptions{JSONLogs: jsonLogs}
			srvOpts.Addr, _ = cmd.Flags().GetString("addr")
			srvOpts.UploadDir, _ = cmd.Flags().GetString("upload-dir")
			srvOpts.ProcessedDir, _ = cmd.Flags().GetString("processed-dir")
			srvOpts.MaxUploadSize, _ = cmd.Flags().GetInt("max-upload-size")

			opts, err := pipelineOptions(cmd)
			if err != nil {
				return err
			}
			opts.OutputDir = srvOpts.ProcessedDir

			pipeline, err := buildPipeline(cmd, opts, log)
			if err != nil {
				return err
			}

			srv, err := server.New(srvOpts, pipeline, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Listen()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				log.Info("Shutting down upload service")
				return srv.Shutdown()
			}
		},
	}

	cmd.Flags().String("addr", config.Env("ADDR", config.DefaultAddr), "Listen address")
	cmd.Flags().String("upload-dir", config.Env("UPLOAD_DIR", config.DefaultUploadDir), "Directory for uploaded videos")
	cmd.Flags().String("processed-dir", config.Env("PROCESSED_DIR", config.DefaultProcessedDir), "Directory for generated GIFs")
	cmd.Flags().Int("max-upload-size", config.DefaultMaxUpload, "Maximum upload size in bytes")
	cmd.Flags().Bool("json-logs", true, "Log as JSON")
	addPipelineFlags(cmd)
	addTranscriberFlags(cmd)

	return cmd
}

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the output profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), formatSupportedProfiles())
			return nil
		},
	}
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("profile", "p", config.Env("PROFILE", config.DefaultProfile),
		fmt.Sprintf("Output profile (%s)", strings.Join(profile.GetSupportedProfiles(), ", ")))
	cmd.Flags().Float64("silence-thresh", config.EnvFloat("SILENCE_THRESH", config.DefaultSilenceThresholdDB), "Silence threshold in dBFS")
	cmd.Flags().Duration("min-silence", config.EnvDuration("MIN_SILENCE", config.DefaultMinSilence), "Shortest pause treated as silence")
	cmd.Flags().String("scratch-dir", config.Env("SCRATCH_DIR", ""), "Parent directory for temporary files (default system temp dir)")
}

func addTranscriberFlags(cmd *cobra.Command) {
	cmd.Flags().String("whisper-url", config.Env("WHISPER_URL", config.DefaultWhisperURL), "Whisper-compatible transcription endpoint")
	cmd.Flags().String("whisper-model", config.Env("WHISPER_MODEL", config.DefaultWhisperModel), "Transcription model name")
	cmd.Flags().String("language", config.Env("LANGUAGE", ""), "Spoken language hint, e.g. 'en'")
	cmd.Flags().Duration("whisper-timeout", config.EnvDuration("WHISPER_TIMEOUT", config.DefaultWhisperTimeout), "Timeout per transcription request")
}

func pipelineOptions(cmd *cobra.Command) (*config.PipelineOptions, error) {
	opts := &config.PipelineOptions{}

	opts.InputPath, _ = cmd.Flags().GetString("input")
	opts.OutputDir, _ = cmd.Flags().GetString("output")
	opts.Profile, _ = cmd.Flags().GetString("profile")
	opts.SilenceThresholdDB, _ = cmd.Flags().GetFloat64("silence-thresh")
	opts.MinSilence, _ = cmd.Flags().GetDuration("min-silence")
	opts.ScratchDir, _ = cmd.Flags().GetString("scratch-dir")
	opts.Verbose, _ = cmd.Flags().GetBool("verbose")

	if opts.InputPath != "" {
		if _, err := os.Stat(opts.InputPath); err != nil {
			return nil, errors.Wrap(err, "error reading input video")
		}
	}

	return opts, nil
}

func transcriberOptions(cmd *cobra.Command) config.TranscriberOptions {
	opts := config.TranscriberOptions{APIKey: config.Env("WHISPER_API_KEY", "")}

	opts.URL, _ = cmd.Flags().GetString("whisper-url")
	opts.Model, _ = cmd.Flags().GetString("whisper-model")
	opts.Language, _ = cmd.Flags().GetString("language")
	opts.Timeout, _ = cmd.Flags().GetDuration("whisper-timeout")

	return opts
}

func newDetector(media *ffmpeg.Processor, opts *config.PipelineOptions, log *logrus.Logger) *silence.Detector {
	return silence.NewDetector(media,
		silence.WithThreshold(opts.SilenceThresholdDB),
		silence.WithMinSilence(opts.MinSilence),
		silence.WithLogger(log),
	)
}

func buildPipeline(cmd *cobra.Command, opts *config.PipelineOptions, log *logrus.Logger) (*processor.Pipeline, error) {
	transcriber, err := transcribe.Shared(transcriberOptions(cmd), log)
	if err != nil {
		return nil, err
	}

	media := ffmpeg.NewProcessor(log)
	return processor.NewPipeline(opts, media, newDetector(media, opts, log), transcriber, log)
}

func formatSupportedProfiles() string {
	var sb strings.Builder
	for _, name := range profile.GetSupportedProfiles() {
		sb.WriteString(fmt.Sprintf("- %s\n", name))
	}
	return sb.String()
}

func main() {
	// .env is optional; flag defaults fall back to the process environment
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
