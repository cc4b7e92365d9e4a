package main

import (
	"fmt"

	"github.com/Bibi40k/swe-agent-setup/internal/launch"
	"github.com/Bibi40k/swe-agent-setup/internal/utils"
	pkgconfig "github.com/Bibi40k/swe-agent-setup/pkg/config"
)

// writeResult records the launch without the API key itself.
func (w *setupWizard) writeResult(p launch.Params, out launch.Outcome) error {
	result := pkgconfig.LaunchResult{
		RunID:            w.newRunID(),
		Variant:          string(p.Variant),
		Model:            string(p.Model),
		CostLimit:        p.CostLimit,
		Command:          p.Command,
		Args:             p.Args(),
		ExitCode:         out.ExitCode,
		Outcome:          pkgconfig.OutcomeSuccess,
		StartedAt:        out.Started.UTC(),
		FinishedAt:       out.Finished.UTC(),
		CredentialEnv:    p.Credential.EnvName,
		CredentialSource: string(p.Credential.Source),
	}
	if !out.Success() {
		result.Outcome = pkgconfig.OutcomeFailure
	}
	if p.Credential.Value != "" {
		result.CredentialFingerprint = utils.SecretFingerprint(p.Credential.Value)
	}
	if w.tracer != nil {
		result.TracePath = w.tracer.Path()
	}

	if err := pkgconfig.SaveLaunchResult(w.resultPath, result); err != nil {
		return fmt.Errorf("save launch result: %w", err)
	}
	return nil
}
