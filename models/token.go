package models

import "github.com/golang-jwt/jwt/v5"

// ModClaims, moderatör token'ının içindeki veriler (payload).
//
// Token join sırasında "token" alanında gönderilir; geçerliyse bağlantının
// seviyesi Level'a yükseltilir. Aynı token admin HTTP API'sinde
// "Authorization: Bearer <token>" olarak kullanılır.
type ModClaims struct {
	Nick  string `json:"nick"`
	Level int    `json:"level"`
	jwt.RegisteredClaims
}
