/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package crypto

import (
	"fmt"
	"strings"
	"sync"

	"k8s.io/klog/v2"

	"github.com/Memo-Aldu/flow-builder/pkg/config"
	"github.com/Memo-Aldu/flow-builder/pkg/utils/crypto"
)

// Crypto provides AES encryption/decryption for credential values stored
// in the database. Plaintext secrets never touch the database when crypto
// is enabled.
type Crypto struct {
	key string
}

var (
	once     sync.Once
	instance *Crypto
)

// AESKeyLen - AES key length requirement (16 bytes for AES-128)
const (
	AESKeyLen = 16
)

// NewCrypto creates and returns a singleton instance of Crypto.
// It initializes the crypto key from configuration if crypto is enabled and validates key length requirements.
func NewCrypto() *Crypto {
	once.Do(func() {
		key := ""
		if config.IsCryptoEnable() {
			var err error
			key = config.GetCryptoKey()
			if key == "" {
				klog.ErrorS(err, "failed to get private key for crypto")
				return
			} else if len(key) != AESKeyLen {
				klog.ErrorS(err, fmt.Sprintf("invalid crypto key, the length must be %d", AESKeyLen))
				return
			}
		}
		instance = &Crypto{
			key: key,
		}
	})
	return instance
}

// Encrypt encrypts plaintext data using AES encryption.
// Returns the encrypted string or the original string if crypto is disabled.
// Returns an error if encryption fails or the key is missing.
func (c *Crypto) Encrypt(plainText []byte) (string, error) {
	if !config.IsCryptoEnable() {
		return string(plainText), nil
	}
	if c.key == "" {
		return "", fmt.Errorf("failed to get crypto key")
	}
	return crypto.Encrypt(plainText, []byte(c.key))
}

// Decrypt decrypts ciphertext data using AES decryption.
// Returns the decrypted string or the original string if crypto is disabled.
// Returns an error if decryption fails or the key is missing.
func (c *Crypto) Decrypt(ciphertext string) (string, error) {
	if !config.IsCryptoEnable() {
		return ciphertext, nil
	}
	if c.key == "" {
		return "", fmt.Errorf("failed to get crypto key")
	}
	data, err := crypto.Decrypt(ciphertext, []byte(c.key))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Mask returns a loggable form of a secret value: the last four characters
// prefixed with asterisks. Values of four characters or fewer are fully masked.
func Mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return "****" + secret[len(secret)-4:]
}
