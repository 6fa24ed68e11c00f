package main

import (
	"bytes"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSignAndVerifyLink(t *testing.T) {
	t.Setenv("MANDATE_DOCUMENT_SIGNING_KEY", "test-document-key")
	t.Setenv("MANDATE_VERIFICATION_BASE_URL", "https://mandates.example.ci/verify")

	out, err := execute(t, "sign-link", " mdt-260504-k7q2zp ")
	require.NoError(t, err)

	link, err := url.Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "/verify/MDT-260504-K7Q2ZP", link.Path)
	sig := link.Query().Get("sig")
	require.NotEmpty(t, sig)

	out, err = execute(t, "verify-link", "MDT-260504-K7Q2ZP", sig)
	require.NoError(t, err)
	assert.Contains(t, out, "signature valid")

	_, err = execute(t, "verify-link", "MDT-260504-AAAAAA", sig)
	assert.Error(t, err)
}

func TestDatabaseCommandsNeedURL(t *testing.T) {
	t.Setenv("MANDATE_DATABASE_URL", "")

	_, err := execute(t, "migrate")
	assert.ErrorContains(t, err, "MANDATE_DATABASE_URL")

	_, err = execute(t, "bootstrap-admin", "--email", "root@example.ci", "--password", "long enough password")
	assert.ErrorContains(t, err, "MANDATE_DATABASE_URL")
}
