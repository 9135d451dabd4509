package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/planr/internal/domain"
)

// ShowConfigInput is empty; the command has no options.
type ShowConfigInput struct{}

// ShowConfigOutput lists both config files and the settings they merge to.
type ShowConfigOutput struct {
	Effective    *domain.Config
	GlobalConfig domain.ConfigInfo
	RepoConfig   domain.ConfigInfo
}

// ShowConfig backs `planr config show`.
type ShowConfig struct {
	configManager domain.ConfigManager
	configLoader  domain.ConfigLoader
}

// NewShowConfig returns a ShowConfig that reads file locations from
// configManager and the merged settings from configLoader.
func NewShowConfig(configManager domain.ConfigManager, configLoader domain.ConfigLoader) *ShowConfig {
	return &ShowConfig{configManager: configManager, configLoader: configLoader}
}

// Execute loads the merged config. A file that fails to parse is an error
// rather than a partial listing.
func (uc *ShowConfig) Execute(_ context.Context, _ ShowConfigInput) (*ShowConfigOutput, error) {
	out := &ShowConfigOutput{
		GlobalConfig: uc.configManager.GetGlobalConfigInfo(),
		RepoConfig:   uc.configManager.GetRepoConfigInfo(),
	}

	cfg, err := uc.configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	out.Effective = cfg
	return out, nil
}
