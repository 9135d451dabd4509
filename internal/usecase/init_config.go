package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/planr/internal/domain"
)

// InitConfigInput selects which config file to write.
type InitConfigInput struct {
	Global bool // User-wide file instead of the one under .planr/
}

// InitConfigOutput reports where the template was written.
type InitConfigOutput struct {
	Path string
}

// InitConfig writes the commented default config for one scope. An existing
// file is never overwritten; the manager reports domain.ErrConfigExists.
type InitConfig struct {
	configManager domain.ConfigManager
}

// NewInitConfig returns an InitConfig backed by configManager.
func NewInitConfig(configManager domain.ConfigManager) *InitConfig {
	return &InitConfig{configManager: configManager}
}

// Execute writes the template for the selected scope.
func (uc *InitConfig) Execute(_ context.Context, in InitConfigInput) (*InitConfigOutput, error) {
	scope, info, write := "repository", uc.configManager.GetRepoConfigInfo(), uc.configManager.InitRepoConfig
	if in.Global {
		scope, info, write = "global", uc.configManager.GetGlobalConfigInfo(), uc.configManager.InitGlobalConfig
	}

	if err := write(); err != nil {
		return nil, fmt.Errorf("init %s config: %w", scope, err)
	}
	return &InitConfigOutput{Path: info.Path}, nil
}
