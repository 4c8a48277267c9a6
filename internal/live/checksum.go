package live

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"os"
)

// Checksum — HMAC-подпись сериализованного состояния. Состояние ходит
// через браузер, без подписи его можно было бы подменить.
func Checksum(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func VerifyChecksum(secret, payload []byte, sum string) bool {
	want := Checksum(secret, payload)
	return hmac.Equal([]byte(want), []byte(sum))
}

// SecretFromEnv — секрет для подписи состояния, как и для JWT берём из
// окружения с дефолтом
func SecretFromEnv() []byte {
	s := os.Getenv("LIVE_SECRET")
	if s == "" {
		s = "default_secret"
	}
	return []byte(s)
}
