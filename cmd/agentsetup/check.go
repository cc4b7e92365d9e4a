package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/Bibi40k/swe-agent-setup/configs"
	"github.com/Bibi40k/swe-agent-setup/internal/choice"
	"github.com/Bibi40k/swe-agent-setup/internal/credential"
	"github.com/Bibi40k/swe-agent-setup/internal/gate"
	"github.com/Bibi40k/swe-agent-setup/internal/ui"
	"github.com/Bibi40k/swe-agent-setup/internal/utils"
)

// checker runs the non-interactive part of every stage.
type checker struct {
	cfg      configs.Config
	env      credential.Env
	lookPath func(file string) (string, error)
	dial     gate.DialFunc
	logger   *slog.Logger
}

func runCheckCommand(ctx context.Context, cfg configs.Config) error {
	c := &checker{
		cfg:      cfg,
		env:      credential.ProcessEnv{},
		lookPath: exec.LookPath,
		dial:     utils.DialPort,
		logger:   getLogger(),
	}
	if failed := c.run(ctx); failed > 0 {
		return &userError{
			msg:  fmt.Sprintf("%d check(s) failed", failed),
			hint: "Fix the items marked ✗, then run agentsetup check again",
		}
	}
	return nil
}

// run reports every check and returns how many hard checks failed.
// Things the wizard can still fix interactively only warn.
func (c *checker) run(ctx context.Context) int {
	failed := 0

	dir := c.cfg.Precondition.Directory
	if err := gate.DirReady(dir); err != nil {
		c.logger.Error(err.Error(), "path", dir)
		failed++
	} else {
		ui.Success(c.logger, "Precondition directory is ready", "path", dir)
	}

	envName := c.cfg.Credential.Env
	if v, ok := c.env.Lookup(envName); !ok || v == "" {
		c.logger.Warn("API key not set, the wizard will ask for it", "env", envName)
	} else {
		format := credential.Format{
			Prefix:    c.cfg.Credential.Prefix,
			MinLength: c.cfg.Credential.MinLength,
			Strict:    c.cfg.Credential.Strict,
		}
		if err := format.Validate(v); err != nil {
			c.logger.Warn("API key in environment looks malformed: "+err.Error(), "env", envName)
		} else {
			ui.Success(c.logger, "API key present", "env", envName, "key", credential.Mask(v))
		}
	}

	svc := c.cfg.Service
	if svc.Probe {
		if err := c.dial(ctx, svc.Host, svc.Port, svc.ProbeTimeout()); err != nil {
			c.logger.Warn(fmt.Sprintf("%s is not listening", svc.Name), "host", svc.Host, "port", svc.Port)
		} else {
			ui.Success(c.logger, fmt.Sprintf("%s is reachable", svc.Name), "host", svc.Host, "port", svc.Port)
		}
	} else {
		c.logger.Info(fmt.Sprintf("%s is confirmed interactively (enable --probe to test the port)", svc.Name), "port", svc.Port)
	}

	if path, err := c.lookPath(c.cfg.Launch.Command); err != nil {
		c.logger.Error("Agent command not found", "command", c.cfg.Launch.Command)
		failed++
	} else {
		ui.Success(c.logger, "Agent command found", "path", path)
	}

	if c.cfg.Launch.Variant == "repo" {
		if _, err := os.Stat(c.cfg.Repo.Path); err == nil {
			ui.Success(c.logger, "Repository present", "path", c.cfg.Repo.Path)
		} else if !errors.Is(err, os.ErrNotExist) {
			c.logger.Error(err.Error())
			failed++
		} else if _, err := c.lookPath("git"); err != nil {
			c.logger.Error("Repository missing and git not found", "path", c.cfg.Repo.Path)
			failed++
		} else {
			c.logger.Info("Repository will be cloned on launch", "url", c.cfg.Repo.URL)
		}
	}

	return failed
}

func printModels(w io.Writer, cfg configs.Config) error {
	menu, err := choice.NewMenu(cfg.Models)
	if err != nil {
		return err
	}
	for i, label := range menu.Labels() {
		fmt.Fprintf(w, "  %d. %s\n", i+1, label)
	}
	return nil
}
