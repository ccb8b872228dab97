package upi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTxnID_Format(t *testing.T) {
	src := NewSource(1)
	now := time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)

	id := NewTxnID(src, now)

	assert.Regexp(t, `^TXN-20240307-[A-Z0-9]{6}$`, id)
	assert.True(t, TxnIDPattern.MatchString(id))
}

func TestNewTxnID_UniqueAcrossDraws(t *testing.T) {
	src := NewSource(42)
	seen := make(map[string]bool)
	for i := 0; i < 5000; i++ {
		id := NewTxnID(src, time.Now())
		require.False(t, seen[id], "txn id collision: %s", id)
		seen[id] = true
	}
}

func TestNewBankRef(t *testing.T) {
	src := NewSource(7)
	ref := NewBankRef(src)
	assert.Regexp(t, `^REF[A-Z0-9]{10}$`, ref)
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress("bob@demo"))
	assert.True(t, ValidAddress("0001ab@demo"))
	assert.True(t, ValidAddress("first.last-1@okhdfc"))

	assert.False(t, ValidAddress("bob"))
	assert.False(t, ValidAddress("@demo"))
	assert.False(t, ValidAddress("bob@"))
	assert.False(t, ValidAddress("bob demo@bank"))
}

func TestRandomDelay_InclusiveBounds(t *testing.T) {
	src := NewSource(3)
	seenMin, seenMax := false, false
	for i := 0; i < 2000; i++ {
		d := RandomDelay(src, 2, 5)
		require.GreaterOrEqual(t, d, 2)
		require.LessOrEqual(t, d, 5)
		if d == 2 {
			seenMin = true
		}
		if d == 5 {
			seenMax = true
		}
	}
	assert.True(t, seenMin, "min bound never drawn")
	assert.True(t, seenMax, "max bound never drawn")
}

func TestRandomDelay_DegenerateRange(t *testing.T) {
	src := NewSource(3)
	assert.Equal(t, 4, RandomDelay(src, 4, 4))
	assert.Equal(t, 9, RandomDelay(src, 9, 2))
}

func TestShouldSucceed_Extremes(t *testing.T) {
	src := NewSource(11)
	for i := 0; i < 100; i++ {
		assert.True(t, ShouldSucceed(src, 1.0))
		assert.False(t, ShouldSucceed(src, 0.0))
	}
}

func TestRandomFailureReason_FromFixedSet(t *testing.T) {
	src := NewSource(5)
	members := make(map[string]bool, len(FailureReasons))
	for _, r := range FailureReasons {
		members[r] = true
	}
	for i := 0; i < 200; i++ {
		assert.True(t, members[RandomFailureReason(src)])
	}
}

func TestQRPayload_RoundTrip(t *testing.T) {
	payload := QRPayload("bob@demo", "Bob Smith", 250.5)
	assert.Equal(t, "upi://pay?pa=bob@demo&pn=Bob+Smith&am=250.5&cu=INR", payload)

	data, err := ParseQRPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, "bob@demo", data.UPIID)
	assert.Equal(t, "Bob Smith", data.Name)
	require.NotNil(t, data.Amount)
	assert.Equal(t, 250.5, *data.Amount)
}

func TestQRPayload_NoAmount(t *testing.T) {
	payload := QRPayload("bob@demo", "Bob", 0)
	assert.Equal(t, "upi://pay?pa=bob@demo&pn=Bob&cu=INR", payload)

	data, err := ParseQRPayload(payload)
	require.NoError(t, err)
	assert.Nil(t, data.Amount)
}

func TestParseQRPayload_Rejects(t *testing.T) {
	cases := []string{
		"",
		"https://pay?pa=bob@demo&pn=Bob",
		"upi://collect?pa=bob@demo&pn=Bob",
		"upi://pay?pn=Bob",
		"upi://pay?pa=bob@demo",
		"upi://pay?pa=bob@demo&pn=Bob&am=abc",
	}
	for _, payload := range cases {
		_, err := ParseQRPayload(payload)
		assert.ErrorIs(t, err, ErrBadQRPayload, "payload: %q", payload)
	}
}
