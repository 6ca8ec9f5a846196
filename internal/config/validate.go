package config

import (
	"fmt"
)

// Validate checks configuration correctness. It performs declarative
// validation only and MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg.Link.Port == "" {
		return fmt.Errorf("link: port is required")
	}
	if cfg.Link.Baud <= 0 {
		return fmt.Errorf("link: baud must be positive, got %d", cfg.Link.Baud)
	}
	switch cfg.Link.Checksum {
	case "", "none", "crc32":
	default:
		return fmt.Errorf("link: unknown checksum %q (use none or crc32)", cfg.Link.Checksum)
	}

	if cfg.Telemetry.RateHz <= 0 {
		return fmt.Errorf("telemetry: rate_hz must be positive, got %g", cfg.Telemetry.RateHz)
	}

	if cfg.Image != nil {
		if cfg.Image.Path == "" {
			return fmt.Errorf("image: path is required")
		}
		if cfg.Image.EverySec <= 0 {
			return fmt.Errorf("image: every_s must be positive, got %g", cfg.Image.EverySec)
		}
		if err := validateRender("image", cfg.Image.Render); err != nil {
			return err
		}
	}

	if cfg.Remote != nil {
		if cfg.Remote.URL == "" {
			return fmt.Errorf("remote: url is required")
		}
		if cfg.Remote.EverySec <= 0 {
			return fmt.Errorf("remote: every_s must be positive, got %g", cfg.Remote.EverySec)
		}
		if cfg.Remote.TimeoutSec < 0 {
			return fmt.Errorf("remote: timeout_s must not be negative, got %g", cfg.Remote.TimeoutSec)
		}
		if err := validateRender("remote", cfg.Remote.Render); err != nil {
			return err
		}
	}

	return nil
}

func validateRender(section string, r RenderConfig) error {
	switch r.Format {
	case "", "png":
		return nil
	case "r565":
		if r.Width < 1 || r.Width > 0xFFFF || r.Height < 1 || r.Height > 0xFFFF {
			return fmt.Errorf("%s: r565 requires width and height in 1..65535, got %dx%d",
				section, r.Width, r.Height)
		}
		return nil
	}
	return fmt.Errorf("%s: unknown format %q (use png or r565)", section, r.Format)
}
