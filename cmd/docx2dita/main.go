package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dgallion1/docx2dita/internal/config"
	"github.com/dgallion1/docx2dita/internal/convert"
	"github.com/dgallion1/docx2dita/internal/dita"
	"github.com/dgallion1/docx2dita/internal/styles"
)

func main() {
	var (
		output         string
		settingsPath   string
		reportPath     string
		title          string
		code           string
		reference      string
		revisionDate   string
		revisionNumber string
		excludeStyles  []string
		styleOverrides []string
		verbose        bool
	)

	pflag.StringVarP(&output, "output", "o", "", "output zip path (default: input name with .zip)")
	pflag.StringVar(&settingsPath, "config", "", "YAML settings file with conversion defaults")
	pflag.StringVar(&reportPath, "report", "", "write the conversion report (markdown) to this path")
	pflag.StringVar(&title, "title", "", "map title (default: first heading or filename)")
	pflag.StringVar(&code, "code", "", "document code for the map metadata")
	pflag.StringVar(&reference, "reference", "", "document reference for the map metadata")
	pflag.StringVar(&revisionDate, "revision-date", "", "revision date (YYYY-MM-DD)")
	pflag.StringVar(&revisionNumber, "revision-number", "", "revision number")
	pflag.StringArrayVar(&excludeStyles, "exclude-style", nil, "heading style to hide from the map (repeatable)")
	pflag.StringArrayVar(&styleOverrides, "style-override", nil, "force a style's level, as name=level (repeatable)")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "log progress phases")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] input.docx\n\nFlags:\n", filepath.Base(os.Args[0]))
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}
	input := pflag.Arg(0)

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(input, output, settingsPath, reportPath, dita.Metadata{
		Title:          title,
		Code:           code,
		Reference:      reference,
		RevisionDate:   revisionDate,
		RevisionNumber: revisionNumber,
	}, excludeStyles, styleOverrides, log); err != nil {
		log.Error("conversion failed", "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(input, output, settingsPath, reportPath string, meta dita.Metadata, excludeStyles, overrideFlags []string, log *slog.Logger) error {
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return err
	}

	opts := convert.Options{
		ExcludedStyles: settings.ExcludedStyles,
		ColorRules:     settings.Colors,
		Metadata:       mergeMetadata(settings.Metadata, meta),
		Progress: func(phase string) {
			log.Info(phase)
		},
	}
	if len(excludeStyles) > 0 {
		opts.ExcludedStyles = excludeStyles
	}
	opts.StyleOverrides, err = mergeOverrides(settings.StyleOverrides, overrideFlags)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	conv, err := convert.Run(data, filepath.Base(input), opts)
	if err != nil {
		return err
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".zip"
	}
	if err := os.WriteFile(output, conv.Archive, 0o644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	if reportPath != "" {
		if err := os.WriteFile(reportPath, []byte(conv.Report()), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	res := conv.Result
	fmt.Printf("%s: %d topics, %d images, %d warnings -> %s\n",
		filepath.Base(input), len(res.Topics), len(res.Media), len(res.Warnings), output)
	for _, warn := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s (image %s in %s)\n", warn.Message, warn.RelID, warn.TopicID)
	}
	return nil
}

func mergeMetadata(defaults config.SettingsMetadata, flags dita.Metadata) dita.Metadata {
	meta := dita.Metadata{
		Title:          defaults.Title,
		Code:           defaults.Code,
		Reference:      defaults.Reference,
		RevisionDate:   defaults.RevisionDate,
		RevisionNumber: defaults.RevisionNumber,
	}
	if flags.Title != "" {
		meta.Title = flags.Title
	}
	if flags.Code != "" {
		meta.Code = flags.Code
	}
	if flags.Reference != "" {
		meta.Reference = flags.Reference
	}
	if flags.RevisionDate != "" {
		meta.RevisionDate = flags.RevisionDate
	}
	if flags.RevisionNumber != "" {
		meta.RevisionNumber = flags.RevisionNumber
	}
	return meta
}

func mergeOverrides(defaults map[string]int, flags []string) (map[string]int, error) {
	if len(defaults) == 0 && len(flags) == 0 {
		return nil, nil
	}
	merged := make(map[string]int, len(defaults)+len(flags))
	for k, v := range defaults {
		merged[k] = v
	}
	for _, ov := range flags {
		name, levelStr, ok := strings.Cut(ov, "=")
		if !ok {
			return nil, fmt.Errorf("--style-override %q: want name=level", ov)
		}
		level, err := strconv.Atoi(levelStr)
		if err != nil || level < 1 || level > styles.MaxDepth {
			return nil, fmt.Errorf("--style-override %q: level must be 1..%d", ov, styles.MaxDepth)
		}
		merged[name] = level
	}
	return merged, nil
}
