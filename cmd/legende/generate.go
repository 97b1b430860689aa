package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"legendemer/internal/composer"
	"legendemer/internal/domain"
	"legendemer/internal/i18n"
	"legendemer/internal/media"
	"legendemer/internal/orchestrator"
	"legendemer/internal/storage"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a legendary catch from a local photo and save it",
		RunE:  runGenerate,
	}
	cmd.Flags().StringVarP(&opts.Photo, "photo", "p", "", "path to a png, jpeg or webp portrait")
	cmd.Flags().StringVarP(&opts.OutDir, "out-dir", "o", "", "directory for the result (defaults to OUTPUT_DIR or the current directory)")
	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	locale := i18n.Match(opts.Lang).String()
	if strings.TrimSpace(opts.Photo) == "" {
		return errors.New(i18n.Text(locale, i18n.KeyMissingPhoto))
	}
	source, err := readPhoto(opts.Photo)
	if err != nil {
		return err
	}

	out := cmd.ErrOrStderr()
	observer := orchestrator.ObserverFunc(func(e domain.ProgressEvent) {
		msg := i18n.StateText(locale, e.State)
		if e.Attempt > 0 {
			msg = fmt.Sprintf("%s (%d)", msg, e.Attempt)
		}
		fmt.Fprintln(out, msg)
	})

	p, cfg, logger, err := buildPipeline(ctx, observer)
	if err != nil {
		return err
	}

	result, err := p.Orchestrator.Generate(ctx, domain.GenerationRequest{
		MediaKind:   domain.MediaKind(opts.Kind),
		Details:     catchDetails(),
		SourceImage: source,
	})
	if err != nil {
		if domain.Classify(err).Reselect() {
			fmt.Fprintln(out, "select another key with --api-key and try again")
		}
		return localizedFailure(locale, err)
	}

	dir := firstNonEmpty(opts.OutDir, cfg.OutputDir, ".")
	fs, err := storage.NewFileStore(dir)
	if err != nil {
		return err
	}
	artifact, err := media.NewFetcher(nil).Fetch(ctx, result.MediaReference)
	if err != nil {
		return fmt.Errorf("download result: %w", err)
	}
	path, err := fs.SaveArtifact(ctx, result.MediaKind, time.Now(), artifact.Data)
	if err != nil {
		return err
	}
	logger.Info().Str("generation_id", result.ID).Str("path", path).Msg("saved")
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// failure prints as the localized message and unwraps to the cause.
type failure struct {
	msg string
	err error
}

func (f *failure) Error() string { return f.msg }
func (f *failure) Unwrap() error { return f.err }

func localizedFailure(locale string, err error) error {
	return &failure{msg: i18n.FailureText(locale, err), err: err}
}

func readPhoto(path string) (domain.SourceImage, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return domain.SourceImage{}, fmt.Errorf("read photo: %w", err)
	}
	src := domain.SourceImage{Data: data}
	if err := media.ValidateSourceImage(&src); err != nil {
		return domain.SourceImage{}, err
	}
	return src, nil
}

func newComposeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compose",
		Short: "Print the prompt for a catch without calling the generative service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := domain.ParseMediaKind(opts.Kind)
			if err != nil {
				return err
			}
			details := catchDetails()
			if err := details.Validate(); err != nil {
				return err
			}
			c := composer.Compose(kind, details, "")
			fmt.Fprintln(cmd.OutOrStdout(), c.Prompt)
			return nil
		},
	}
}

func newLocationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "location <name>",
		Short: "Show a short grounded note about a fishing spot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, _, err := buildPipeline(cmd.Context(), nil)
			if err != nil {
				return err
			}
			info := p.Enricher.LocationInfo(cmd.Context(), strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), info.Text)
			if info.MapLink != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", info.SourceTitle, info.MapLink)
			}
			return nil
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
