package totp_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	libotp "github.com/pquerna/otp"
	libtotp "github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpgate/pkg/base32"
	"github.com/dmitrymomot/otpgate/pkg/totp"
)

var rfcSecret = []byte("12345678901234567890")

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("empty secret", func(t *testing.T) {
		t.Parallel()
		e, err := totp.New(nil)
		assert.ErrorIs(t, err, totp.ErrMissingSecret)
		assert.Nil(t, e)

		e, err = totp.New([]byte{})
		assert.ErrorIs(t, err, totp.ErrMissingSecret)
		assert.Nil(t, e)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		e, err := totp.New(rfcSecret)
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, e.Step())
		assert.Equal(t, 6, e.Digits())
	})

	t.Run("invalid digits", func(t *testing.T) {
		t.Parallel()
		_, err := totp.New(rfcSecret, totp.WithDigits(11))
		assert.ErrorIs(t, err, totp.ErrInvalidDigits)

		_, err = totp.New(rfcSecret, totp.WithDigits(-1))
		assert.ErrorIs(t, err, totp.ErrInvalidDigits)
	})

	t.Run("secret is copied", func(t *testing.T) {
		t.Parallel()
		secret := append([]byte(nil), rfcSecret...)
		e, err := totp.New(secret)
		require.NoError(t, err)
		want := e.Code(1)

		clear(secret)
		assert.Equal(t, want, e.Code(1))
	})
}

func TestCode_RFC4226Vectors(t *testing.T) {
	t.Parallel()
	e, err := totp.New(rfcSecret)
	require.NoError(t, err)

	want := []string{
		"755224", "287082", "359152", "969429", "338314",
		"254676", "287922", "162583", "399871", "520489",
	}
	for counter, code := range want {
		assert.Equal(t, code, e.Code(uint64(counter)), "counter %d", counter)
	}
}

func TestCurrentCode_RFC6238Vectors(t *testing.T) {
	t.Parallel()
	e, err := totp.New(rfcSecret, totp.WithDigits(8))
	require.NoError(t, err)

	tests := []struct {
		unix int64
		want string
	}{
		{59, "94287082"},
		{1111111109, "07081804"},
		{1111111111, "14050471"},
		{1234567890, "89005924"},
		{2000000000, "69279037"},
		{20000000000, "65353130"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("t=%d", tt.unix), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, e.CurrentCode(time.Unix(tt.unix, 0)))
		})
	}
}

func TestCounter(t *testing.T) {
	t.Parallel()
	e, err := totp.New(rfcSecret)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), e.Counter(time.Unix(29, 0)))
	assert.Equal(t, uint64(1), e.Counter(time.Unix(30, 0)))
	assert.Equal(t, uint64(37037036), e.Counter(time.Unix(1111111109, 0)))
	assert.Equal(t, uint64(0), e.Counter(time.Unix(-100, 0)))

	e60, err := totp.New(rfcSecret, totp.WithStep(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), e60.Counter(time.Unix(150, 0)))
}

func TestValidate_Window(t *testing.T) {
	t.Parallel()
	e, err := totp.New(rfcSecret)
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	past := e.CurrentCode(now.Add(-30 * time.Second))
	current := e.CurrentCode(now)
	future := e.CurrentCode(now.Add(30 * time.Second))
	tooOld := e.CurrentCode(now.Add(-60 * time.Second))
	tooNew := e.CurrentCode(now.Add(60 * time.Second))

	tests := []struct {
		name string
		code string
		want bool
	}{
		{"previous step", past, true},
		{"current step", current, true},
		{"next step", future, true},
		{"two steps back", tooOld, tooOld == past || tooOld == current || tooOld == future},
		{"two steps ahead", tooNew, tooNew == past || tooNew == current || tooNew == future},
		{"wrong length", current[:5], false},
		{"empty", "", false},
		{"non numeric", "abcdef", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, e.Validate(tt.code, now))
		})
	}
}

func TestMatch_ReturnsCounter(t *testing.T) {
	t.Parallel()
	e, err := totp.New(rfcSecret)
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	code := e.CurrentCode(now.Add(30 * time.Second))

	counter, ok := e.Match(code, now)
	require.True(t, ok)
	assert.Equal(t, e.Counter(now)+1, counter)
}

func TestMatch_AtEpoch(t *testing.T) {
	t.Parallel()
	e, err := totp.New(rfcSecret)
	require.NoError(t, err)

	epoch := time.Unix(0, 0)
	assert.True(t, e.Validate(e.Code(0), epoch))
	assert.True(t, e.Validate(e.Code(1), epoch))
}

func TestPackageValidate(t *testing.T) {
	t.Parallel()
	now := time.Now()
	e, err := totp.New(rfcSecret)
	require.NoError(t, err)

	assert.True(t, totp.Validate(rfcSecret, e.CurrentCode(now), now))
	assert.False(t, totp.Validate(nil, e.CurrentCode(now), now))
}

func TestWipe(t *testing.T) {
	t.Parallel()
	e, err := totp.New(rfcSecret)
	require.NoError(t, err)
	before := e.Code(0)

	e.Wipe()
	assert.NotEqual(t, before, e.Code(0))

	var nilEngine *totp.Engine
	assert.NotPanics(t, nilEngine.Wipe)
}

func TestGenerateSecret(t *testing.T) {
	t.Parallel()
	a, err := totp.GenerateSecret()
	require.NoError(t, err)
	b, err := totp.GenerateSecret()
	require.NoError(t, err)

	assert.Len(t, a, totp.SecretSize)
	assert.NotEqual(t, a, b)
	assert.Len(t, base32.Encode(a), 32)
}

// The engine must agree with an independent RFC 6238 implementation.
func TestEngineMatchesReferenceImplementation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("code equals pquerna/otp code", prop.ForAll(
		func(secret []byte, unix int64) bool {
			e, err := totp.New(secret)
			if err != nil {
				return false
			}
			at := time.Unix(unix, 0)
			want, err := libtotp.GenerateCodeCustom(base32.Encode(secret), at, libtotp.ValidateOpts{
				Period:    30,
				Digits:    libotp.DigitsSix,
				Algorithm: libotp.AlgorithmSHA1,
			})
			if err != nil {
				return false
			}
			return e.CurrentCode(at) == want
		},
		gen.SliceOfN(totp.SecretSize, gen.UInt8()),
		gen.Int64Range(0, 4_102_444_800),
	))

	properties.TestingRun(t)
}

func TestValidateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	secretGen := gen.SliceOfN(totp.SecretSize, gen.UInt8())
	timeGen := gen.Int64Range(60, 4_102_444_800)

	properties.Property("the current code always validates", prop.ForAll(
		func(secret []byte, unix int64) bool {
			e, err := totp.New(secret)
			if err != nil {
				return false
			}
			now := time.Unix(unix, 0)
			return e.Validate(e.CurrentCode(now), now)
		},
		secretGen, timeGen,
	))

	properties.Property("codes outside the three windows never validate", prop.ForAll(
		func(secret []byte, unix int64, candidate uint32) bool {
			e, err := totp.New(secret)
			if err != nil {
				return false
			}
			now := time.Unix(unix, 0)
			code := fmt.Sprintf("%06d", candidate%1_000_000)
			c := e.Counter(now)
			if code == e.Code(c-1) || code == e.Code(c) || code == e.Code(c+1) {
				return true
			}
			return !e.Validate(code, now)
		},
		secretGen, timeGen, gen.UInt32(),
	))

	properties.TestingRun(t)
}
