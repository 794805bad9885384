package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// WalletClaims is the session token payload issued after a successful
// signature-verified wallet connect.
type WalletClaims struct {
	Address  string `json:"address"`
	WalletID string `json:"wallet_id"`
	jwt.RegisteredClaims
}

// IssueWalletToken signs an HS256 session token for a connected wallet.
func IssueWalletToken(secret []byte, address, walletID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := WalletClaims{
		Address:  address,
		WalletID: walletID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   address,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseWalletToken validates a session token and returns its claims.
func ParseWalletToken(secret []byte, tokenString string) (*WalletClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &WalletClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*WalletClaims)
	if !ok || !token.Valid || claims.Address == "" {
		return nil, errors.New("invalid wallet token")
	}
	return claims, nil
}
