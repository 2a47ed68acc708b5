package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword хеширует пароль администратора для конфигурации
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckCredentials сравнивает имя за постоянное время и пароль с bcrypt-хешем
func CheckCredentials(username, password, wantUsername, passwordHash string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(wantUsername)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) == nil
	return userOK && passOK
}
