package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ofckit/ofc/internal/domain"
)

func writeRoster(t *testing.T, contents string) *RosterSource {
	t.Helper()

	path := filepath.Join(t.TempDir(), "roster.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	config := viper.New()
	config.Set("roster.path", path)

	source, err := NewRosterSource(config)
	require.NoError(t, err)
	return source
}

func TestRosterLoad(t *testing.T) {
	source := writeRoster(t, `version = 1

[[people]]
id = "U0000ALICE"
address = "10.0.0.5"
name = "Alice"

[[people]]
id = "U00000BOB1"
address = "10.0.0.6"
name = "Bob"
`)

	people, err := source.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.Person{
		{ID: "U0000ALICE", Address: "10.0.0.5", DisplayName: "Alice"},
		{ID: "U00000BOB1", Address: "10.0.0.6", DisplayName: "Bob"},
	}, people)
}

func TestRosterLoadRejectsInvalidEntryEntirely(t *testing.T) {
	source := writeRoster(t, `version = 1

[[people]]
id = "U0000ALICE"
address = "10.0.0.5"
name = "Alice"

[[people]]
id = "U00000BOB1"
address = "bobs-laptop"
name = "Bob"
`)

	_, err := source.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrInvalidPerson)
}

func TestRosterLoadRejectsDuplicateAddresses(t *testing.T) {
	source := writeRoster(t, `version = 1

[[people]]
id = "U0000ALICE"
address = "10.0.0.5"
name = "Alice"

[[people]]
id = "U00000BOB1"
address = "10.0.0.5"
name = "Bob"
`)

	_, err := source.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrInvalidPerson)
}

func TestRosterLoadMissingFileFails(t *testing.T) {
	config := viper.New()
	config.Set("roster.path", filepath.Join(t.TempDir(), "missing.toml"))

	source, err := NewRosterSource(config)
	require.NoError(t, err)

	_, err = source.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestRosterLoadRejectsUnsupportedVersion(t *testing.T) {
	source := writeRoster(t, `version = 7
`)

	_, err := source.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version 7")
}

func TestRosterLoadRejectsMalformedTOML(t *testing.T) {
	source := writeRoster(t, `[[people]`)

	_, err := source.Load(context.Background())
	require.Error(t, err)
}

func TestRosterLoadHonorsCancelledContext(t *testing.T) {
	source := writeRoster(t, `version = 1`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := source.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
