/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package crypto

import (
	"testing"

	"gotest.tools/assert"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef")
	plain := []byte(`{"api_key":"sk-test-1234"}`)

	ciphertext, err := Encrypt(plain, key)
	assert.NilError(t, err)
	assert.Assert(t, ciphertext != string(plain))

	decrypted, err := Decrypt(ciphertext, key)
	assert.NilError(t, err)
	assert.DeepEqual(t, decrypted, plain)
}

func TestDecryptWithWrongKey(t *testing.T) {
	ciphertext, err := Encrypt([]byte("secret"), []byte("0123456789abcdef"))
	assert.NilError(t, err)

	_, err = Decrypt(ciphertext, []byte("fedcba9876543210"))
	assert.Assert(t, err != nil)
}

func TestDecryptTooShort(t *testing.T) {
	_, err := Decrypt("YWJj", []byte("0123456789abcdef"))
	assert.ErrorContains(t, err, "ciphertext too short")
}

func TestEncryptBadKeyLength(t *testing.T) {
	_, err := Encrypt([]byte("secret"), []byte("short"))
	assert.Assert(t, err != nil)
}
