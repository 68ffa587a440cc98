// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetConfigDir_Override(t *testing.T) {
	t.Setenv(ConfigDirEnv, "/etc/roster")
	assert.Equal(t, "/etc/roster", GetConfigDir())
	assert.Equal(t, filepath.Join("/etc/roster", "config.yaml"), GetConfigFile())
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG lookup is Unix only")
	}
	t.Setenv(ConfigDirEnv, "")
	t.Setenv("XDG_CONFIG_HOME", "/home/u/.cfg")
	assert.Equal(t, filepath.Join("/home/u/.cfg", AppName), GetConfigDir())

	t.Setenv("XDG_DATA_HOME", "/home/u/.data")
	assert.Equal(t, filepath.Join("/home/u/.data", AppName), GetDataDir())
}

func TestNormalizePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	assert.Equal(t, filepath.Join(home, "plans", "kw10.xlsx"), NormalizePath("~/plans/../plans/kw10.xlsx"))
	assert.Equal(t, "", NormalizePath(""))
	assert.Equal(t, "~user/x", ExpandHome("~user/x"))
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, ValidatePath(""))
	assert.NoError(t, ValidatePath("out/stamped"))
	assert.Error(t, ValidatePath("bad\x00path"))
}
