package version

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func TestVersionDefaults(t *testing.T) {
	require.NotEmpty(t, Version)
}

func TestColoredWithoutColor(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	require.Equal(t, "1.2.3-rc.1", Colored("1.2.3-rc.1"))
}

func TestColoredKeepsText(t *testing.T) {
	orig := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = orig }()

	got := Colored("1.2.3-dev")
	require.Contains(t, got, "1")
	require.Contains(t, got, "-dev")
	require.NotEqual(t, "1.2.3-dev", got)
	require.Equal(t, "dev", Colored("dev"))
	require.Equal(t, "1.2", Colored("1.2"))
}
