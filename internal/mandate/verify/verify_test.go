package verify

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mandate/internal/mandate/models"
	"mandate/internal/mandate/store"
	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
)

const testKey = "0123456789abcdef0123456789abcdef"

func newSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := NewSigner(testKey, "https://mandates.example.ci/verify/")
	require.NoError(t, err)
	return s
}

func TestSigner(t *testing.T) {
	s := newSigner(t)

	sig := s.Sign("MDT-123456-ABCDEF")
	assert.NotContains(t, sig, "=")
	assert.True(t, s.Valid("MDT-123456-ABCDEF", sig))
	assert.False(t, s.Valid("MDT-123456-ABCDEG", sig))
	assert.False(t, s.Valid("MDT-123456-ABCDEF", sig[:len(sig)-1]))
	assert.False(t, s.Valid("MDT-123456-ABCDEF", "!!not-base64!!"))

	other, err := NewSigner("another-key", "")
	require.NoError(t, err)
	assert.False(t, other.Valid("MDT-123456-ABCDEF", sig))

	_, err = NewSigner("", "")
	assert.Error(t, err)
}

func TestSignerURL(t *testing.T) {
	s := newSigner(t)
	link := s.URL("MDT-123456-ABCDEF")
	assert.True(t, strings.HasPrefix(link, "https://mandates.example.ci/verify/MDT-123456-ABCDEF?sig="))

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.True(t, s.Valid("MDT-123456-ABCDEF", u.Query().Get("sig")))
}

func seeded(t *testing.T, status models.Status) (*store.InMemoryStore, models.Mandate) {
	t.Helper()
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	m := models.Mandate{
		ID:              id.NewMandateID(),
		ReferenceNumber: "MDT-123456-ABCDEF",
		Status:          status,
		Submitter: models.SubmitterData{
			LastName:     "KOUASSI",
			FirstName:    "Jean",
			Function:     "Délégué",
			Email:        "jean.kouassi@example.ci",
			Phone:        "+225 07 00 00 00",
			Constituency: "Abidjan Sud",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == models.StatusSuperAdminApproved {
		m.SuperAdminApprovedAt = &now
	}
	st := store.NewInMemory()
	require.NoError(t, st.Create(context.Background(), m))
	return st, m
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	signer := newSigner(t)

	t.Run("approved mandate with valid signature", func(t *testing.T) {
		st, m := seeded(t, models.StatusSuperAdminApproved)
		v, err := NewVerifier(st, signer).Verify(ctx, " mdt-123456-abcdef ", signer.Sign(m.ReferenceNumber))
		require.NoError(t, err)
		assert.True(t, v.Valid)
		assert.Equal(t, "KOUASSI Jean", v.FullName)
		assert.Equal(t, "Abidjan Sud", v.Constituency)
		assert.NotNil(t, v.SuperAdminApprovedAt)
	})

	t.Run("admin approval alone is not enough", func(t *testing.T) {
		st, m := seeded(t, models.StatusAdminApproved)
		v, err := NewVerifier(st, signer).Verify(ctx, m.ReferenceNumber, signer.Sign(m.ReferenceNumber))
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, ReasonNotApproved, v.Reason)
		assert.Empty(t, v.FullName)
	})

	t.Run("rejected mandate", func(t *testing.T) {
		st, m := seeded(t, models.StatusRejected)
		v, err := NewVerifier(st, signer).Verify(ctx, m.ReferenceNumber, signer.Sign(m.ReferenceNumber))
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, ReasonRejected, v.Reason)
	})

	t.Run("bad signature reveals nothing", func(t *testing.T) {
		st, m := seeded(t, models.StatusSuperAdminApproved)
		v, err := NewVerifier(st, signer).Verify(ctx, m.ReferenceNumber, "forged")
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, ReasonSignatureInvalid, v.Reason)
		assert.Empty(t, v.Status)
	})

	t.Run("unknown reference with valid signature", func(t *testing.T) {
		st, _ := seeded(t, models.StatusSuperAdminApproved)
		_, err := NewVerifier(st, signer).Verify(ctx, "MDT-999999-ZZZZZZ", signer.Sign("MDT-999999-ZZZZZZ"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("malformed reference with valid signature", func(t *testing.T) {
		st, _ := seeded(t, models.StatusSuperAdminApproved)
		_, err := NewVerifier(st, signer).Verify(ctx, "MDT-1", signer.Sign("MDT-1"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("empty reference", func(t *testing.T) {
		st, _ := seeded(t, models.StatusSuperAdminApproved)
		_, err := NewVerifier(st, signer).Verify(ctx, "  ", "x")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestProjectNeverExposesContactDetails(t *testing.T) {
	_, m := seeded(t, models.StatusSuperAdminApproved)
	v := Project(m)
	assert.True(t, v.Valid)
	assert.NotContains(t, v.FullName, "@")
	assert.Equal(t, "Approved", v.StatusLabel)
}
