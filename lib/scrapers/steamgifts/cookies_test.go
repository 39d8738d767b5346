package steamgifts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCookiesFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies", "steamgifts.json")
	cookies := map[string]string{
		"PHPSESSID": "abc123",
		"feature":   "1",
	}

	require.NoError(t, SaveCookiesFile(path, cookies))

	loaded, err := LoadCookiesFile(path)
	require.NoError(t, err)
	require.Equal(t, cookies, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadCookiesFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1, 2, 3]`), 0o600))

	_, err := LoadCookiesFile(path)
	require.Error(t, err)
}

func TestLoadCookiesEnv(t *testing.T) {
	t.Setenv("SG_COOKIES_TEST", `{"PHPSESSID":"abc123"}`)

	cookies, err := LoadCookiesEnv("SG_COOKIES_TEST")
	require.NoError(t, err)
	require.Equal(t, "abc123", cookies["PHPSESSID"])

	_, err = LoadCookiesEnv("SG_COOKIES_UNSET")
	require.Error(t, err)
}
