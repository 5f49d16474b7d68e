package crypto

import (
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestFromHexDerivesKnownAddress(t *testing.T) {
	// Well-known throwaway vector: key 0x01 maps to the secp256k1
	// generator point.
	key, err := FromHex("0x0000000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"), key.Address())

	// The 0x prefix is optional.
	bare, err := FromHex("0000000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)
	require.Equal(t, key.Address(), bare.Address())
}

func TestFromHexRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "0x", "0xZZ", "deadbeef"} {
		_, err := FromHex(bad)
		require.Error(t, err, "input %q", bad)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	require.NoError(t, err)

	rebuilt, err := PrivateKeyFromBytes(key.Bytes())
	require.NoError(t, err)
	require.Equal(t, key.Address(), rebuilt.Address())
}

func TestKeystoreRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "keys", "signer.json")
	require.NoError(t, SaveToKeystore(path, key, "correct horse"))

	loaded, err := LoadFromKeystore(path, "correct horse")
	require.NoError(t, err)
	require.Equal(t, key.Address(), loaded.Address())

	_, err = LoadFromKeystore(path, "wrong passphrase")
	require.Error(t, err)
}

func TestSaveToKeystoreValidation(t *testing.T) {
	require.Error(t, SaveToKeystore("", nil, ""))

	key, err := GeneratePrivateKey()
	require.NoError(t, err)
	require.Error(t, SaveToKeystore("", key, "pw"))
}
