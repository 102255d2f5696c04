package hkey

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opencas/hkvault/hkhash"
)

// selfContainedEncrypter is satisfied by hkcipher.Convergent; declared
// locally so this test can reach EncryptSelfContained without widening the
// package's unexported cipher interface.
type selfContainedEncrypter interface {
	EncryptSelfContained(plaintext []byte) (ciphertext []byte, ciphertextHash hkhash.Hash, err error)
}

func TestPutSmallDataIsRaw(t *testing.T) {
	env := newTestEnv()
	data := []byte("tiny")
	h, err := Put(context.Background(), env, data)
	require.NoError(t, err)
	require.Equal(t, KindRaw, h.Kind())
	payload, ok := h.Payload()
	require.True(t, ok)
	require.Equal(t, data, payload)
}

func TestPutMidSizedDataIsEncryptedAndResolves(t *testing.T) {
	env := newTestEnv()
	data := bytes.Repeat([]byte("mid-sized content "), 100)
	require.Greater(t, len(data), MaxSizeRaw)
	require.LessOrEqual(t, len(data), MaxDecryptedSize)

	h, err := Put(context.Background(), env, data)
	require.NoError(t, err)
	require.Equal(t, KindEncrypted, h.Kind())

	got, err := Resolve(context.Background(), env, h)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestPutConvergesToSameReferenceForIdenticalContent(t *testing.T) {
	env := newTestEnv()
	data := bytes.Repeat([]byte("convergent "), 50)

	h1, err := Put(context.Background(), env, data)
	require.NoError(t, err)
	h2, err := Put(context.Background(), env, data)
	require.NoError(t, err)

	require.True(t, Equal(h1, h2))
}

func TestPutLargeDataBuildsLongHkeyAndResolves(t *testing.T) {
	env := newTestEnv()
	data := bytes.Repeat([]byte("0123456789abcdef"), 1000) // 16000 bytes, past a single chunk
	require.Greater(t, len(data), MaxDecryptedSize)

	h, err := Put(context.Background(), env, data)
	require.NoError(t, err)
	require.Equal(t, KindLongHkey, h.Kind())

	got, err := Resolve(context.Background(), env, h)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestPutDirectAdmitsAlreadySelfContainedCiphertext(t *testing.T) {
	env := newTestEnv()
	plaintext := []byte("will be pre-encrypted")

	selfContained, _, err := env.Cipher.(selfContainedEncrypter).EncryptSelfContained(plaintext)
	require.NoError(t, err)
	require.LessOrEqual(t, len(selfContained), MaxEncryptedSize)
	require.True(t, env.Cipher.Validate(selfContained))

	h, err := Put(context.Background(), env, selfContained)
	require.NoError(t, err)
	require.Equal(t, KindDirect, h.Kind())

	got, err := Resolve(context.Background(), env, h)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}
