// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package xdg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tests := []struct {
		name string
		env  string
		fn   func() string
		want string
		home string
	}{
		{name: "config from env", env: "/custom/config", fn: ConfigDir, want: "/custom/config/turnsim"},
		{name: "config default", fn: ConfigDir, home: "/home/testuser", want: "/home/testuser/.config/turnsim"},
		{name: "data from env", env: "/custom/data", fn: DataDir, want: "/custom/data/turnsim"},
		{name: "data default", fn: DataDir, home: "/home/testuser", want: "/home/testuser/.local/share/turnsim"},
		{name: "state from env", env: "/custom/state", fn: StateDir, want: "/custom/state/turnsim"},
		{name: "state default", fn: StateDir, home: "/home/testuser", want: "/home/testuser/.local/state/turnsim"},
	}

	vars := []string{"XDG_CONFIG_HOME", "XDG_DATA_HOME", "XDG_STATE_HOME"}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range vars {
				t.Setenv(v, "")
			}
			t.Setenv("HOME", tt.home)
			if tt.env != "" {
				t.Setenv(vars[i/2], tt.env)
			}
			assert.Equal(t, tt.want, tt.fn())
		})
	}
}

func TestConfigFileAndSnapshotsDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")

	assert.Equal(t, "/cfg/turnsim/config.yaml", ConfigFile())
	assert.Equal(t, "/data/turnsim/snapshots", SnapshotsDir())
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

	require.NoError(t, EnsureDir(path), "existing directory is fine")
}

func TestEnsureDir_Fails(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	assert.Error(t, EnsureDir(filepath.Join(file, "sub")))
}
