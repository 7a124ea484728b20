package token

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewAPIToken 生成用户的长期 API Token（64 位十六进制字符串）
func NewAPIToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// NewObjectKey 为上传文件生成存储路径，如 analyses/<uuid>.jpg
func NewObjectKey(prefix, ext string) string {
	return prefix + "/" + uuid.NewString() + ext
}
