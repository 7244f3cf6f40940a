package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"devwrite/internal/build"
	"devwrite/internal/domain/config"
	"devwrite/internal/serve"

	"github.com/jessevdk/go-flags"
)

type globalOptions struct {
	Config         string `long:"config" short:"c" env:"DEVWRITE_CONFIG" default:"site.yaml" description:"Path to the site configuration file"`
	SiteURL        string `long:"site-url" env:"SITE_URL" description:"Public URL of the site (overrides site.site_url)"`
	SMTPPassword   string `long:"smtp-password" env:"SMTP_PASSWORD" description:"SMTP password (overrides mail.password)"`
	DiscordWebhook string `long:"discord-webhook" env:"DISCORD_WEBHOOK_URL" description:"Discord webhook for new post announcements"`
	IncludeDraft   bool   `long:"drafts" description:"Include draft posts"`
}

type serveCommand struct {
	Addr string `long:"addr" env:"ADDR" default:":8080" description:"Address to listen on"`

	global *globalOptions
}

type buildCommand struct {
	Out string `long:"out" short:"o" description:"Output directory (overrides build.public_dir)"`

	global *globalOptions
}

func main() {
	var opts globalOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.SubcommandsOptional = false

	if _, err := parser.AddCommand("serve", "Run the development server",
		"Serve the site with live reload and the JSON API.", &serveCommand{global: &opts}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if _, err := parser.AddCommand("build", "Build the static site",
		"Render every page into the public directory.", &buildCommand{global: &opts}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag and env overrides
// before validating.
func loadConfig(opts *globalOptions) (config.Config, error) {
	cfg, err := config.Decode(opts.Config)
	if err != nil {
		return cfg, fmt.Errorf("failed to load %s: %w", opts.Config, err)
	}
	if opts.SiteURL != "" {
		cfg.Site.SiteURL = opts.SiteURL
	}
	if opts.SMTPPassword != "" {
		cfg.Mail.Password = opts.SMTPPassword
	}
	if opts.DiscordWebhook != "" {
		cfg.Notify.DiscordWebhook = opts.DiscordWebhook
	}
	if opts.IncludeDraft {
		cfg.Build.IncludeDraft = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *serveCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.global)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := serve.New(cfg, serve.Options{})
	if err != nil {
		return fmt.Errorf("serve init error: %w", err)
	}
	defer s.Close()

	return s.ListenAndServe(ctx, c.Addr)
}

func (c *buildCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.global)
	if err != nil {
		return err
	}
	if c.Out != "" {
		cfg.Build.PublicDir = c.Out
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := (&build.Builder{Cfg: cfg}).Run(ctx)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "[warn] %s: %s\n", w.Path, w.Msg)
	}
	fmt.Printf("built %d posts and %d pages into %s\n", res.Posts, res.Pages, cfg.Build.PublicDir)
	return nil
}
