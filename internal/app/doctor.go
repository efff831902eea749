package app

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/nmartins/melodysync/internal/config"
	"github.com/nmartins/melodysync/internal/constants"
	"github.com/nmartins/melodysync/internal/logger"
)

// doctorCheck is one environment precondition doctor verifies.
type doctorCheck struct {
	Name string
	OK   bool
	Note string
}

// ExecuteDoctorCommand runs a battery of environment checks — output
// directory writability, source catalog credentials, and the optional
// ffmpeg dependency the audio processor degrades gracefully without — and
// prints a report. It returns an error if any check that would abort a real
// sync run (critical per §7) fails; a missing ffmpeg is reported but does
// not fail the command, since the processor treats that as a no-op.
func ExecuteDoctorCommand(ctx context.Context, cfg *config.Config) error {
	checks := []doctorCheck{
		checkOutputWritable(cfg),
		checkSourceCredentials(cfg),
		checkFFmpeg(),
	}

	failed := false

	for _, c := range checks {
		status := "ok"
		if !c.OK {
			status = "FAIL"
		}

		logger.Infof(ctx, "[%s] %s: %s", status, c.Name, c.Note)

		if !c.OK && c.Name != "ffmpeg" {
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("one or more critical checks failed")
	}

	return nil
}

func checkOutputWritable(cfg *config.Config) doctorCheck {
	probe := cfg.OutputDirectory + "/.melodysync_doctor_probe"

	if err := os.MkdirAll(cfg.OutputDirectory, constants.DefaultFolderPermissions); err != nil {
		return doctorCheck{Name: "output directory", Note: err.Error()}
	}

	file, err := os.Create(probe) //nolint:gosec // Path is config-sourced.
	if err != nil {
		return doctorCheck{Name: "output directory", Note: err.Error()}
	}

	_ = file.Close()
	_ = os.Remove(probe)

	return doctorCheck{Name: "output directory", OK: true, Note: cfg.OutputDirectory + " is writable"}
}

func checkSourceCredentials(cfg *config.Config) doctorCheck {
	if cfg.SourceClientID == "" || cfg.SourceClientSecret == "" {
		return doctorCheck{
			Name: "source catalog credentials",
			Note: fmt.Sprintf("missing %s/%s", config.EnvSourceClientID, config.EnvSourceClientSecret),
		}
	}

	return doctorCheck{Name: "source catalog credentials", OK: true, Note: "present"}
}

func checkFFmpeg() doctorCheck {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return doctorCheck{
			Name: "ffmpeg", Note: "not found on PATH; silence trim and loudness normalization will be skipped",
		}
	}

	return doctorCheck{Name: "ffmpeg", OK: true, Note: "found on PATH"}
}
