package jwtToken

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func New(
	accountID string,
	tokenTTL time.Duration,
	secret []byte,
) (
	string,
	error,
) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["account_id"] = accountID
	claims["exp"] = time.Now().Add(tokenTTL).Unix()

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func VerifyToken(tokenString string, secret []byte) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		},
	)
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	accountID, ok := claims["account_id"].(string)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	return accountID, nil
}
