package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/karlmeister/kns/pkg/config"
	"github.com/karlmeister/kns/pkg/kns/filename"
	"github.com/karlmeister/kns/pkg/kns/sampler"
	"github.com/lestrrat-go/strftime"
	"github.com/spf13/cobra"
)

// wizardAnswers holds the values collected by the init form.
type wizardAnswers struct {
	Prefix          string
	TimeFormat      string
	Delimiter       string
	OutputPath      string
	Location        string
	WSAddr          string
	ExtraSchedulers []string
}

func newInitCmd(c *cli) *cobra.Command {
	var (
		useDefaults bool
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file",
		Long: `Writes a configuration file to --config, or <kns-dir>/config.yaml when
--config is not set. Without --defaults an interactive form asks for the
filename defaults, the websocket address and the extra schedulers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := c.configPath
			if path == "" {
				path = filepath.Join(c.knsDir, "config.yaml")
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}

			cfg := c.cfg
			if !useDefaults {
				answers := answersFrom(cfg)
				if err := runWizard(&answers); err != nil {
					return err
				}
				cfg = answers.apply(cfg)
			}

			if err := config.Save(path, cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)

			return nil
		},
	}

	cmd.Flags().BoolVar(&useDefaults, "defaults", false, "write the default configuration without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")

	return cmd
}

func answersFrom(cfg config.Config) wizardAnswers {
	extra := cfg.Enums.ExtraSchedulers
	if extra == nil {
		extra = sampler.ExtraSchedulers
	}

	return wizardAnswers{
		Prefix:          cfg.Filename.Prefix,
		TimeFormat:      cfg.Filename.TimeFormat,
		Delimiter:       cfg.Filename.Delimiter,
		OutputPath:      cfg.Filename.OutputPath,
		Location:        cfg.Filename.Location,
		WSAddr:          cfg.Server.WSAddr,
		ExtraSchedulers: append([]string(nil), extra...),
	}
}

// apply copies the answers over cfg. An empty scheduler selection is kept as
// an explicit empty list so no extra schedulers are offered.
func (a wizardAnswers) apply(cfg config.Config) config.Config {
	cfg.Filename.Prefix = a.Prefix
	cfg.Filename.TimeFormat = a.TimeFormat
	cfg.Filename.Delimiter = a.Delimiter
	cfg.Filename.OutputPath = a.OutputPath
	cfg.Filename.Location = a.Location
	cfg.Server.WSAddr = a.WSAddr

	cfg.Enums.ExtraSchedulers = append([]string{}, a.ExtraSchedulers...)

	return cfg
}

func runWizard(a *wizardAnswers) error {
	opts := make([]huh.Option[string], len(sampler.ExtraSchedulers))
	for i, s := range sampler.ExtraSchedulers {
		opts[i] = huh.NewOption(s, s)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Filename prefix").Value(&a.Prefix),
			huh.NewInput().Title("Timestamp format (strftime)").Value(&a.TimeFormat).Validate(validateTimeFormat),
			huh.NewInput().Title("Filename delimiter").Value(&a.Delimiter),
			huh.NewInput().Title("Output path").Value(&a.OutputPath),
			huh.NewInput().Title("Time zone (IANA name, empty for local time)").Value(&a.Location).Validate(validateLocation),
		),
		huh.NewGroup(
			huh.NewInput().Title("Websocket bridge address").Value(&a.WSAddr),
			huh.NewMultiSelect[string]().
				Title("Extra schedulers").
				Options(opts...).
				Value(&a.ExtraSchedulers),
		),
	).Run()
}

func validateTimeFormat(s string) error {
	if s == "" {
		return errors.New("must not be empty")
	}
	if _, err := strftime.New(s, strftime.WithSpecificationSet(filename.Verbs)); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	return nil
}

func validateLocation(s string) error {
	if s == "" {
		return nil
	}
	if strings.EqualFold(s, "local") {
		return errors.New("leave empty for local time")
	}
	if _, err := time.LoadLocation(s); err != nil {
		return fmt.Errorf("unknown time zone %q", s)
	}
	return nil
}
