package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/testutil"
)

func TestInitConfig_Repo(t *testing.T) {
	manager := &testutil.MockConfigManager{RepoInfo: domain.ConfigInfo{Path: "/p/.planr/config.toml"}}

	out, err := NewInitConfig(manager).Execute(context.Background(), InitConfigInput{})
	require.NoError(t, err)
	assert.Equal(t, "/p/.planr/config.toml", out.Path)
	assert.True(t, manager.InitRepoCalled)
	assert.False(t, manager.InitGlobalCalled)
}

func TestInitConfig_Global(t *testing.T) {
	manager := &testutil.MockConfigManager{GlobalInfo: domain.ConfigInfo{Path: "/home/u/.config/planr/config.toml"}}

	out, err := NewInitConfig(manager).Execute(context.Background(), InitConfigInput{Global: true})
	require.NoError(t, err)
	assert.Equal(t, "/home/u/.config/planr/config.toml", out.Path)
	assert.True(t, manager.InitGlobalCalled)
}

func TestInitConfig_Exists(t *testing.T) {
	manager := &testutil.MockConfigManager{InitRepoErr: domain.ErrConfigExists}

	_, err := NewInitConfig(manager).Execute(context.Background(), InitConfigInput{})
	assert.ErrorIs(t, err, domain.ErrConfigExists)
	assert.ErrorContains(t, err, "init repository config")
	assert.False(t, manager.InitGlobalCalled)
}
