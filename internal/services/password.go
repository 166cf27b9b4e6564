package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword compares password with a stored hash. Besides bcrypt it accepts the
// werkzeug "pbkdf2:sha256:<iterations>$<salt>$<hex>" format found in databases
// created by earlier versions of the logbook.
func CheckPassword(hash, password string) bool {
	if strings.HasPrefix(hash, "pbkdf2:") {
		return checkWerkzeugPBKDF2(hash, password)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func checkWerkzeugPBKDF2(hash, password string) bool {
	parts := strings.SplitN(hash, "$", 3)
	if len(parts) != 3 {
		return false
	}
	method := strings.Split(parts[0], ":")
	if len(method) != 3 || method[1] != "sha256" {
		return false
	}
	iterations, err := strconv.Atoi(method[2])
	if err != nil || iterations <= 0 {
		return false
	}
	want, err := hex.DecodeString(parts[2])
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(password), []byte(parts[1]), iterations, sha256.Size, sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
